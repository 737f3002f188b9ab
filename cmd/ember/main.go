// Package main provides the Ember ML Framework CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/ember-ml/ember/array"
	_ "github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/graph"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "version":
		fmt.Printf("Ember ML Framework %s\n", version)
	case "selfcheck":
		if err := selfcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "selfcheck failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("selfcheck passed")
	case "dot":
		if err := writeGraph(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "dot failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Ember ML Framework - Define-by-Run Autodiff for Go\n")
		fmt.Printf("Version: %s\n\n", version)
		fmt.Println("Commands:")
		fmt.Println("  version    Show version")
		fmt.Println("  selfcheck  Differentiate a small graph and verify the gradients")
		fmt.Println("  dot        Print a sample computation graph in DOT format")
	}
}

// selfcheck differentiates y = x^2 at x=2 twice and verifies 4 and 8,
// exercising the backend, the graph builder, and gradient accumulation.
func selfcheck() error {
	ctx := graph.NewContext()
	raw, err := array.Scalar64(2.0, array.Float64, array.CPU)
	if err != nil {
		return err
	}
	x := graph.New(raw)

	for pass, want := range []float64{4.0, 8.0} {
		y, err := graph.Square(ctx, x)
		if err != nil {
			return err
		}
		if err := y.Backward(ctx); err != nil {
			return err
		}
		got := x.GradArray().Float64At(0)
		if got != want {
			return fmt.Errorf("pass %d: x.grad = %v, want %v", pass, got, want)
		}
	}
	return nil
}

func writeGraph(w *os.File) error {
	ctx := graph.NewContext()
	raw, err := array.Scalar64(1.0, array.Float64, array.CPU)
	if err != nil {
		return err
	}
	x := graph.New(raw)
	x.SetName("x")
	s, err := graph.Sin(ctx, x)
	if err != nil {
		return err
	}
	c, err := graph.Cos(ctx, x)
	if err != nil {
		return err
	}
	y, err := graph.Mul(ctx, s, c)
	if err != nil {
		return err
	}
	y.SetName("y")
	return graph.Export(y).WriteDOT(w, "sample")
}
