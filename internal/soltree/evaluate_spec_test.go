package soltree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sem0ark/soltree/internal/soltree"
)

var _ = Describe("apple sorting", func() {
	var tree *soltree.SolutionTree[apple]

	BeforeEach(func() {
		var err error
		tree, err = soltree.Compile(applyAllConfig(), appleSelectors())
		Expect(err).NotTo(HaveOccurred())
	})

	When("an apple belongs to the Strange Family", func() {
		It("is flagged unprocessable and nothing else", func() {
			out := tree.Evaluate(apple{"Strange Family", "green", "small"})
			Expect(out).To(Equal(soltree.Output{"unprocessable": true}))
		})
	})

	When("a blue apple also matches a known good family", func() {
		It("merges both the color rule and the family rule's output", func() {
			out := tree.Evaluate(apple{"Big Red", "blue", "extra"})
			Expect(out).To(HaveKeyWithValue("new type of apple", true))
			Expect(out).To(HaveKeyWithValue("is good", false))
		})
	})

	When("a Strange Family apple is also blue", func() {
		It("fires the color rule and the Strange Family rule together, in one output", func() {
			out := tree.Evaluate(apple{"Strange Family", "blue", "big"})
			Expect(out).To(Equal(soltree.Output{"new type of apple": true, "unprocessable": true}))
		})
	})

	When("nothing in the tree matches", func() {
		It("returns an empty output rather than guessing a default", func() {
			out := tree.Evaluate(apple{"Unknown Family", "purple", "tiny"})
			Expect(out).To(BeEmpty())
		})
	})

	Describe("doubly nested also clauses", func() {
		It("only fires the innermost branch when every ancestor condition holds", func() {
			matching := tree.Evaluate(apple{"Granny Green", "green", "ex-extra"})
			Expect(matching).To(HaveKeyWithValue("new type of apple", true))

			sizeMismatch := tree.Evaluate(apple{"Granny Green", "green", "small"})
			Expect(sizeMismatch).NotTo(HaveKey("new type of apple"))
		})
	})
})

var _ = Describe("compilation", func() {
	It("compiles the apply-all apple configuration into a tree", func() {
		tree, err := soltree.Compile(applyAllConfig(), appleSelectors())
		Expect(err).NotTo(HaveOccurred())
		Expect(tree).NotTo(BeNil())
	})
})
