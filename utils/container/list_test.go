package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/flowctl/utils/container"
)

type testCar struct {
	v float64
}

func (t testCar) V() float64 {
	return t.v
}

func (t testCar) Length() float64 {
	return 5
}

type node = container.ListNode[testCar, struct{}]

func newNode(s float64) *node {
	return &node{S: s, Value: testCar{v: s}}
}

func TestListInit(t *testing.T) {
	l := &container.List[testCar, struct{}]{}
	assert.Nil(t, l.First())
	assert.Nil(t, l.Last())
	assert.Equal(t, 0, l.Len())
}

func TestListMergeAndRing(t *testing.T) {
	l := &container.List[testCar, struct{}]{ID: "lane 0"}
	n30, n10, n20 := newNode(30), newNode(10), newNode(20)
	l.Merge([]*node{n30, n10, n20})
	assert.Equal(t, []float64{10, 20, 30}, l.Keys())
	assert.Equal(t, []testCar{{v: 10}, {v: 20}, {v: 30}}, l.Values())
	assert.Equal(t, 3, l.Len())

	// 环形：最前车的前车是最后车
	assert.Equal(t, n10, n30.NextOnRing())
	assert.Equal(t, n30, n10.PrevOnRing())
	assert.Equal(t, n20, n10.NextOnRing())

	assert.Equal(t, n20, l.FirstAfter(10))
	assert.Nil(t, l.FirstAfter(30))
	assert.Equal(t, n10, l.LastBefore(15))
	assert.Nil(t, l.LastBefore(5))
}

func TestListSingleNodeHasNoRingNeighbor(t *testing.T) {
	l := &container.List[testCar, struct{}]{}
	n := newNode(1)
	l.PushBack(n)
	assert.Nil(t, n.NextOnRing())
	assert.Nil(t, n.PrevOnRing())
}

func TestListPopUnsortedAfterWrap(t *testing.T) {
	l := &container.List[testCar, struct{}]{}
	n1, n2, n3 := newNode(1), newNode(2), newNode(3)
	l.Merge([]*node{n1, n2, n3})
	// 3号车越过终点回到起点
	n3.S = 0.5
	unsorted := l.PopUnsorted()
	assert.Equal(t, []*node{n3}, unsorted)
	l.Merge(unsorted)
	assert.Equal(t, []float64{0.5, 1, 2}, l.Keys())
	assert.Equal(t, n3, l.First())

	l.Remove(n2)
	assert.Equal(t, n1, l.Last())
	assert.Equal(t, 2, l.Len())
	assert.Nil(t, n2.Parent())
}
