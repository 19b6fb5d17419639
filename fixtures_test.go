package catadioptre

import (
	"container/list"
	"errors"
)

var errBoom = errors.New("boom")

type parentReflectionObject struct {
	inheritedValue *int
}

func (p *parentReflectionObject) returnInheritedValue() *int {
	return p.inheritedValue
}

func (p *parentReflectionObject) inheritedDivide(value int, divider int) float64 {
	return float64(value / divider)
}

func (p *parentReflectionObject) inheritedDivideSum(divider int, values ...int) float64 {
	return float64(sum(values) / divider)
}

func (p *parentReflectionObject) divideSum(divider float64, values ...interface{}) float64 {
	var total float64
	for _, v := range values {
		switch v := v.(type) {
		case int:
			total += float64(v)
		case float64:
			total += v
		}
	}
	return total / divider
}

type reflectionObject struct {
	parentReflectionObject
	value *int
}

func newReflectionObject() *reflectionObject {
	value, inherited := 123, 789
	return &reflectionObject{
		parentReflectionObject: parentReflectionObject{inheritedValue: &inherited},
		value:                  &value,
	}
}

func (o *reflectionObject) Value() *int {
	return o.value
}

func (o *reflectionObject) returnValue() *int {
	return o.value
}

func (o *reflectionObject) divide(value int, divider int) float64 {
	return float64(value / divider)
}

func (o *reflectionObject) divideSum(divider int, values ...int) float64 {
	return float64(sum(values) / divider)
}

func (o *reflectionObject) throwException() {
	panic(errBoom)
}

// divideListSum is registered as another divideSum.
func divideListSum(_ *reflectionObject, divider int, values *list.List) float64 {
	if values == nil {
		return 0
	}
	var total int
	for e := values.Front(); e != nil; e = e.Next() {
		total += e.Value.(int)
	}
	return float64(total / divider)
}

type shape interface {
	area() float64
}

type square struct {
	side float64
}

func (s square) area() float64 {
	return s.side * s.side
}

type counter struct {
	n int
}

func (c *counter) inc() {
	c.n++
}

func (c counter) current() int {
	return c.n
}

func (c counter) Total() int {
	return c.n
}

type counterHolder struct {
	*counter
}

// shadowing embeds x twice: at depth 1 through nearer, at depth 2 through
// middle.
type shadowing struct {
	middle
	nearer
}

type middle struct {
	deepest
}

type deepest struct {
	x int
}

func (d *deepest) get() int {
	return d.x
}

type nearer struct {
	x int
}

func (n *nearer) get() int {
	return n.x
}

func newShadowing() *shadowing {
	return &shadowing{middle: middle{deepest{x: 1}}, nearer: nearer{x: 2}}
}

func sum(values []int) int {
	var total int
	for _, v := range values {
		total += v
	}
	return total
}

func init() {
	RegisterMethod("returnValue", (*reflectionObject).returnValue)
	RegisterMethod("divide", (*reflectionObject).divide)
	RegisterMethod("divideSum", (*reflectionObject).divideSum)
	RegisterMethod("divideSum", divideListSum)
	RegisterMethod("throwException", (*reflectionObject).throwException)
	RegisterMethod("returnInheritedValue", (*parentReflectionObject).returnInheritedValue)
	RegisterMethod("inheritedDivide", (*parentReflectionObject).inheritedDivide)
	RegisterMethod("inheritedDivideSum", (*parentReflectionObject).inheritedDivideSum)
	RegisterMethod("divideSum", (*parentReflectionObject).divideSum)
	RegisterMethod("area", shape.area)
	RegisterMethod("inc", (*counter).inc)
	RegisterMethod("current", counter.current)
	RegisterMethod("get", (*deepest).get)
	RegisterMethod("get", (*nearer).get)
}
