package layered_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/sugiyama/pkg/graph"
	"github.com/matzehuels/sugiyama/pkg/layered"
)

func ExampleLayout() {
	root := &graph.Node{
		ID: "root",
		Children: []*graph.Node{
			{ID: "a", Width: 30, Height: 20},
			{ID: "b", Width: 30, Height: 20},
		},
		Edges: []*graph.Edge{
			{ID: "ab", Sources: []string{"a"}, Targets: []string{"b"}},
		},
	}

	res, err := layered.Layout(context.Background(), root, nil)
	if err != nil {
		panic(err)
	}
	for _, n := range root.Children {
		fmt.Printf("%s at (%.0f, %.0f)\n", n.ID, n.X, n.Y)
	}
	fmt.Printf("size %.0fx%.0f, %d layers\n", root.Width, root.Height, res.Layers)
	// Output:
	// a at (12, 12)
	// b at (62, 12)
	// size 104x44, 2 layers
}
