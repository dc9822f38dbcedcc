package scc

import "testing"

func indexOf(sccs [][]string, name string) int {
	for i, c := range sccs {
		for _, n := range c {
			if n == name {
				return i
			}
		}
	}
	return -1
}

func TestSCCsSingleNodes(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	sccs := g.SCCs()
	if len(sccs) != 3 {
		t.Fatalf("expected 3 singleton components, got %d: %v", len(sccs), sccs)
	}
	// b depends on c, so c's component must come before b's.
	if indexOf(sccs, "c") > indexOf(sccs, "b") {
		t.Fatalf("expected c's component before b's: %v", sccs)
	}
	if indexOf(sccs, "b") > indexOf(sccs, "a") {
		t.Fatalf("expected b's component before a's: %v", sccs)
	}
}

func TestSCCsMutualRecursion(t *testing.T) {
	g := NewGraph()
	g.AddEdge("isEven", "isOdd")
	g.AddEdge("isOdd", "isEven")
	g.AddNode("main")
	g.AddEdge("main", "isEven")

	sccs := g.SCCs()
	var mutual []string
	for _, c := range sccs {
		if len(c) == 2 {
			mutual = c
		}
	}
	if mutual == nil {
		t.Fatalf("expected a 2-node component for isEven/isOdd, got %v", sccs)
	}
	if indexOf(sccs, "isEven") > indexOf(sccs, "main") {
		t.Fatalf("expected isEven's component before main's: %v", sccs)
	}
}

func TestSCCsSelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddEdge("fact", "fact")
	sccs := g.SCCs()
	if len(sccs) != 1 || len(sccs[0]) != 1 || sccs[0][0] != "fact" {
		t.Fatalf("expected single self-recursive component, got %v", sccs)
	}
}
