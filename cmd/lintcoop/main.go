// Command lintcoop statically enforces the kernel's concurrency non-goal
// (spec.md §1: "any concurrency primitives beyond cooperative yield" is
// out of scope; spec.md §9: "a re-implementation must resist the
// temptation to introduce async/await-style machinery"): it fails if any
// call-graph edge reachable from cmd/kernel's main lands in a function of
// package sync or sync/atomic. go statements and channel operations are
// not checked.
//
// Grounded on the teacher's use of golang.org/x/tools/go/pointer for
// whole-program analysis (the same family of tooling the teacher's own
// build relies on via its modified toolchain); lintcoop uses the callgraph
// pointer.Analyze produces as a byproduct of alias analysis, rather than
// the alias results themselves, to answer a simpler question: is a
// forbidden function reachable at all.
package main

import (
	"flag"
	"fmt"
	"go/types"
	"os"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa/ssautil"
)

// forbidden packages: reaching any function in these from main indicates
// a concurrency primitive beyond yield snuck in. "testing" is exempt
// because test binaries are not the target this check protects.
var forbiddenPkgs = map[string]bool{
	"sync":        true,
	"sync/atomic": true,
}

func main() {
	pattern := flag.String("pattern", "./cmd/kernel", "entry-point package to analyze")
	flag.Parse()

	cfg := &packages.Config{Mode: packages.LoadAllSyntax}
	pkgs, err := packages.Load(cfg, *pattern)
	if err != nil || packages.PrintErrors(pkgs) > 0 {
		fmt.Fprintf(os.Stderr, "lintcoop: loading %s: %v\n", *pattern, err)
		os.Exit(1)
	}

	prog, _ := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	mains := ssautil.MainPackages(prog.AllPackages())
	if len(mains) == 0 {
		fmt.Fprintln(os.Stderr, "lintcoop: no main package found")
		os.Exit(1)
	}

	result, err := pointer.Analyze(&pointer.Config{
		Mains:          mains,
		BuildCallGraph: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "lintcoop: pointer analysis: %v\n", err)
		os.Exit(1)
	}

	var violations []string
	callgraph.GraphVisitEdges(result.CallGraph, func(e *callgraph.Edge) error {
		fn := e.Callee.Func
		if fn == nil || fn.Pkg == nil {
			return nil
		}
		if pkgPath := packagePath(fn.Pkg.Pkg); forbiddenPkgs[pkgPath] {
			violations = append(violations, fmt.Sprintf("%s reaches %s.%s", e.Caller.Func, pkgPath, fn.Name()))
		}
		return nil
	})

	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, "lintcoop: "+v)
		}
		os.Exit(1)
	}
}

func packagePath(pkg *types.Package) string {
	if pkg == nil {
		return ""
	}
	return pkg.Path()
}
