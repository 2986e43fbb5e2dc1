package symtree_test

import (
	"fmt"

	"github.com/njchilds90/symtree"
)

func ExampleParse() {
	f, err := symtree.Parse([]string{"x"}, "2*x**2 + sin(x)")
	if err != nil {
		panic(err)
	}
	fmt.Println(f)
	fmt.Printf("%.10f\n", f.Worth(1))
	// Output:
	// (2)*((x)**(2)) + sin(x)
	// 2.8414709848
}

func ExampleEvaluate() {
	x, y := symtree.Identifier("x"), symtree.Identifier("y")
	r, _ := symtree.Evaluate(symtree.Add(x, y), symtree.Bindings{"x": 2})
	fmt.Println(r)
	r, _ = symtree.Evaluate(symtree.Add(x, y), symtree.Bindings{"x": 2, "y": 0.5})
	fmt.Println(r)
	// Output:
	// 2.0 + y
	// 2.5
}

func ExampleDifferentiate() {
	d, _ := symtree.Differentiate(symtree.Pow(symtree.Identifier("x"), symtree.Number(3)), "x")
	fmt.Println(d)
	fmt.Println(d.Worth(2))
	// Output:
	// (3)*((x)**(2))
	// 12
}

func ExampleCrossProduct() {
	c, _ := symtree.CrossProduct(symtree.NumberVector(1, 0, 0), symtree.NumberVector(0, 1, 0))
	v, _ := symtree.EvaluateVector(c, nil)
	fmt.Println(v)
	// Output:
	// [0, 0, 1]
}

func ExampleToJSON() {
	j, _ := symtree.ToJSON(symtree.Sin(symtree.Identifier("x")))
	fmt.Println(j)
	// Output:
	// {"op":"sin","left":{"op":"id","name":"x"}}
}
