package commands

import (
	compilererrors "github.com/metac-lang/metac/compiler/errors"
	"github.com/metac-lang/metac/internal/compiler/infer"
	"github.com/metac-lang/metac/internal/compiler/loader"
	"github.com/metac-lang/metac/internal/compiler/model"
)

// compilation is the result of running the full pipeline over a meta-model
type compilation struct {
	SymbolTable        *model.SymbolTable
	ConstraintsByClass map[*model.Class]*infer.ConstraintsByProperty
	Diagnostics        []compilererrors.Diagnostic
}

// ok reports whether the pipeline produced no errors
func (c *compilation) ok() bool {
	errorCount, _ := compilererrors.CountErrors(c.Diagnostics)
	return errorCount == 0
}

// compileModel loads the meta-model, infers the per-class constraints and
// merges them along the inheritance hierarchy. All the diagnostics are
// collected; the constraint tables are nil if any phase failed.
func compileModel(path string) *compilation {
	result := &compilation{}

	symbolTable, loadErrors := loader.Load(path)
	if len(loadErrors) > 0 {
		for _, err := range loadErrors {
			result.Diagnostics = append(result.Diagnostics, compilererrors.New(
				"loader", "LOD001", err.Error(),
				compilererrors.SourceLocation{File: path},
				compilererrors.Error))
		}
		return result
	}
	result.SymbolTable = symbolTable

	constraintsByClass, inferErrors := infer.InferConstraintsByClass(symbolTable)
	if len(inferErrors) > 0 {
		result.Diagnostics = append(
			result.Diagnostics, inferDiagnostics(path, inferErrors)...)
		return result
	}

	merged, mergeErr := infer.MergeConstraintsWithAncestors(
		symbolTable, constraintsByClass)
	if mergeErr != nil {
		result.Diagnostics = append(
			result.Diagnostics,
			inferDiagnostics(path, []*infer.Error{mergeErr})...)
		return result
	}

	result.ConstraintsByClass = merged
	return result
}

// inferDiagnostics converts the inference errors into diagnostics
func inferDiagnostics(path string, errors []*infer.Error) []compilererrors.Diagnostic {
	diagnostics := make([]compilererrors.Diagnostic, 0, len(errors))
	for _, err := range errors {
		diagnostics = append(diagnostics, compilererrors.New(
			"infer", string(err.Code), err.Message,
			compilererrors.SourceLocation{
				File:   path,
				Line:   err.Location.Line,
				Column: err.Location.Column,
			},
			compilererrors.Error))
	}
	return diagnostics
}
