// Package shapes declares annotated members of every kind handled by the
// generator. Its companions are generated and type-checked by the tests of
// the generator.
package shapes

import (
	"container/list"
	"time"
)

// Clock accumulates durations.
type Clock struct {
	// @Testable
	elapsed time.Duration
}

// @Testable
func (c *Clock) tick(time time.Duration) time.Duration {
	c.elapsed += time
	return c.elapsed
}

// @Testable
func (c Clock) split(l *list.List, _ int, values ...time.Duration) (*list.List, error) {
	for _, v := range values {
		l.PushBack(v)
	}
	return l, nil
}

// @Testable
func (c *Clock) store(instance int, catadioptre string, I bool) {}

// Stack is a stack of values.
type Stack[T any] struct {
	// @Testable
	items []T
}

// @Testable
func (s *Stack[T]) push(values ...T) int {
	s.items = append(s.items, values...)
	return len(s.items)
}

// @Testable
func (s *Stack[_]) size() int {
	return len(s.items)
}

// Number is implemented by the numbers a Sum can hold.
type Number interface {
	~int | ~float64
}

// Sum adds numbers.
type Sum[N Number] struct {
	// @Testable{Clearer: false}
	total N
}

type operation interface {
	// @Testable
	apply(a, b int) (int, error)
}

// Base holds what every shape has.
type Base struct {
	// @Testable
	id string
}

// Square is a square.
type Square struct {
	Base

	// @Testable
	side float64
}
