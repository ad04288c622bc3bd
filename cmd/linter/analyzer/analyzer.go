package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports calls that terminate the process (os.Exit, log.Fatal
// and friends) outside func main, and any use of panic. Library code in
// this repo must surface errors instead of exiting.
var Analyzer = &analysis.Analyzer{
	Name:     "directexit",
	Doc:      "reports panic and process-terminating calls outside main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// fatalFuncs maps package paths to the function names that never return.
var fatalFuncs = map[string][]string{
	"os":  {"Exit"},
	"log": {"Fatal", "Fatalf", "Fatalln"},
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	insp.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return false
		}

		call := node.(*ast.CallExpr)

		switch fn := call.Fun.(type) {
		case *ast.Ident:
			if fn.Name == "panic" {
				pass.Reportf(call.Pos(), "panic is forbidden")
			}
		case *ast.SelectorExpr:
			if name, ok := fatalCall(pass, fn); ok && !insideMain(stack) {
				pass.Reportf(call.Pos(), "%s is forbidden outside main function", name)
			}
		}

		return true
	})

	return nil, nil
}

// fatalCall reports whether the selector resolves to a known
// process-terminating function, returning its qualified name.
func fatalCall(pass *analysis.Pass, sel *ast.SelectorExpr) (string, bool) {
	ident, ok := sel.X.(*ast.Ident)
	if !ok || pass.TypesInfo == nil {
		return "", false
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return "", false
	}

	path := pkgName.Imported().Path()
	for _, fn := range fatalFuncs[path] {
		if sel.Sel.Name == fn {
			return path + "." + fn, true
		}
	}

	return "", false
}

// insideMain reports whether the innermost enclosing function
// declaration on the stack is func main.
func insideMain(stack []ast.Node) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if decl, ok := stack[i].(*ast.FuncDecl); ok {
			return decl.Name.Name == "main" && decl.Recv == nil
		}
	}
	return false
}
