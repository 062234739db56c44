package main

import (
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/observability"
)

var (
	defaultWords = []string{"hello", "world", "foo", "bar", "abc"}
	defaultInts  = []int{7, 6, 5, 4}
)

func stringsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "strings [words...]",
		Short: "Insert words into a string map and print every step",
		RunE: func(cmd *cobra.Command, args []string) error {
			words := args
			if len(words) == 0 {
				words = defaultWords
			}
			return runDemo(cmd, opts, "strings", func(env *demoEnv) error {
				return stringsDemo(env, words)
			})
		},
	}
}

func intsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ints [ints...]",
		Short: "Insert integers into an int map and search them",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := defaultInts
			if len(args) > 0 {
				keys = make([]int, 0, len(args))
				for _, arg := range args {
					key, err := strconv.Atoi(arg)
					if err != nil {
						return fmt.Errorf("invalid int key %q: %w", arg, err)
					}
					keys = append(keys, key)
				}
			}
			return runDemo(cmd, opts, "ints", func(env *demoEnv) error {
				return intsDemo(env, keys)
			})
		},
	}
}

func recordsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Link records embedding their own nodes and recover them by key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, opts, "records", recordsDemo)
		},
	}
}

func randomCmd(opts *rootOptions) *cobra.Command {
	var (
		n    int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Random insert and delete churn validated after every step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 {
				return fmt.Errorf("invalid number of operations %d", n)
			}
			return runDemo(cmd, opts, "random", func(env *demoEnv) error {
				return randomDemo(env, n, seed)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "num", "n", 1000, "number of operations")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func newDemoTree[K infra.OrderedKey](env *demoEnv, name string, opts ...tree.RBTreeOpt[K, K]) (tree.RBTree[K, K], error) {
	opts = append(opts, tree.WithRBTreeLogger[K, K](env.logger))
	t := tree.NewOrderedRBTree[K](opts...)
	if _, err := observability.RegisterRBTreeMetrics(env.meter, name, t); err != nil {
		return nil, err
	}
	return t, nil
}

func printSearch[K any, E any](p *treePrinter, t tree.RBTree[K, E], key K) {
	if t.Contains(key) {
		p.Printf("Search key %v found\n", key)
	} else {
		p.Printf("Search key %v not found\n", key)
	}
}

func stringsDemo(env *demoEnv, words []string) error {
	t, err := newDemoTree[string](env, "strings")
	if err != nil {
		return err
	}
	env.printer.Println("Inserting strings to stringMap")
	for _, word := range words {
		if err = t.Insert(tree.NewRBNode(word)); errors.Is(err, tree.ErrRBTreeDuplicateKey) {
			env.printer.Printf("Skip duplicate key %s\n", word)
			continue
		} else if err != nil {
			return err
		}
		printInorder(env.printer, t, formatString)
	}

	env.printer.Println("Performing search in the tree")
	printSearch(env.printer, t, words[0])
	printSearch(env.printer, t, words[len(words)-1])
	return nil
}

func intsDemo(env *demoEnv, keys []int) error {
	t, err := newDemoTree[int](env, "ints")
	if err != nil {
		return err
	}
	env.printer.Println("Inserting int to intMap")
	for _, key := range lo.Uniq(keys) {
		if err = t.Insert(tree.NewRBNode(key)); err != nil {
			return err
		}
	}

	env.printer.Println("Performing inorder traversal for int")
	printInorder(env.printer, t, strconv.Itoa)

	env.printer.Println("Performing search in the tree")
	printSearch(env.printer, t, keys[0])
	printSearch(env.printer, t, 99)
	return nil
}

type foo struct {
	key int
}

type bar struct {
	bar       int
	barmapKey foo
	node      tree.RBNode[*bar]
}

func newBar(v, key int) *bar {
	b := &bar{bar: v, barmapKey: foo{key: key}}
	tree.InitRBNode(&b.node, b)
	return b
}

func recordsDemo(env *demoEnv) error {
	t, err := tree.NewRBTree[foo, *bar](
		func(i, j foo) int64 {
			return infra.OrderedKeyCompare(i.key, j.key)
		},
		func(b *bar) foo {
			return b.barmapKey
		},
		tree.WithRBTreeLogger[foo, *bar](env.logger),
	)
	if err != nil {
		return err
	}
	if _, err = observability.RegisterRBTreeMetrics(env.meter, "records", t); err != nil {
		return err
	}

	b1, b2, b3 := newBar(100, 1), newBar(200, 2), newBar(300, 3)
	env.printer.Println("Inserting bar to barMap")
	for _, b := range []*bar{b1, b2, b3} {
		if err = t.Insert(&b.node); err != nil {
			return err
		}
	}

	env.printer.Println("Performing inorder traversal for barMap")
	printInorder(env.printer, t, func(b *bar) string {
		return strconv.Itoa(b.barmapKey.key)
	})

	key := foo{key: 1}
	env.printer.Printf("Performing a search of key = %d element\n", key.key)
	if node := t.Search(key); node == nil || node.Elem() != b1 {
		env.printer.Println("Wrong insertion!!!")
	} else {
		env.printer.Printf("Bar element successfully retrieved, bar = %d\n", node.Elem().bar)
	}

	key.key = 4
	if _, ok := t.Get(key); !ok {
		env.printer.Printf("Key %d element not found\n", key.key)
	}
	return nil
}

func randomDemo(env *demoEnv, n int, seed uint64) error {
	t, err := newDemoTree[int](env, "random", tree.WithRBTreeDebugValidate[int, int]())
	if err != nil {
		return err
	}
	rng := randv2.New(randv2.NewPCG(seed, seed))
	for i := 0; i < n; i++ {
		switch op := rng.IntN(10); {
		case op == 0 && t.Len() > 0:
			_, err = t.RemoveMin()
		case op == 1 && t.Len() > 0:
			_, err = t.RemoveMax()
		default:
			key := rng.IntN(n)
			if t.Contains(key) {
				_, err = t.Remove(key)
			} else {
				err = t.Insert(tree.NewRBNode(key))
			}
		}
		if err != nil {
			return err
		}
	}
	if err = tree.Validate(t); err != nil {
		return err
	}

	stats := t.Stats()
	env.printer.Printf("Random churn of %d operations with seed %d\n", n, seed)
	env.printer.Printf("len %d, height %d\n", stats.Len, t.Height())
	env.printer.Printf("inserts %d, removes %d, rotations %d\n", stats.Inserts, stats.Removes, stats.Rotations)
	env.printer.Printf("insert recolors %d, remove rebalances %d\n", stats.InsertRecolors, stats.RemoveRebalances)
	if t.Len() > 0 {
		env.printer.Printf("min %d, max %d\n", t.Min().Elem(), t.Max().Elem())
	}
	return nil
}

func formatString(s string) string {
	return s
}
