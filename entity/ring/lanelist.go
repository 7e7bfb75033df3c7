package ring

import (
	"fmt"
	"sync"

	"github.com/tsinghua-fib-lab/flowctl/utils/container"
)

type (
	vehicleNode = container.ListNode[*Vehicle, struct{}]
	vehicleList = container.List[*Vehicle, struct{}]
)

// laneList 车道上的车辆链表
// 功能：车辆按位置升序排列，添加与删除先写入缓冲区，在prepare阶段统一生效
type laneList struct {
	index             int32
	list              *vehicleList
	addBuffer         []*vehicleNode
	addBufferMutex    sync.Mutex
	removeBuffer      []*vehicleNode
	removeBufferMutex sync.Mutex
}

func newLaneList(index int32) *laneList {
	return &laneList{
		index: index,
		list:  &vehicleList{ID: fmt.Sprintf("lane %d vehicles", index)},
	}
}

// prepare 将缓冲区中的操作应用到链表
// 说明：越过环形道路终点的车辆位置变小，通过PopUnsorted取出后重新归并
func (l *laneList) prepare() {
	for _, v := range l.removeBuffer {
		l.list.Remove(v)
	}
	unsorted := l.list.PopUnsorted()
	l.list.Merge(append(l.addBuffer, unsorted...))
	l.removeBuffer = l.removeBuffer[:0]
	l.addBuffer = l.addBuffer[:0]
}

func (l *laneList) add(node *vehicleNode) {
	if node.Parent() != nil {
		log.Panic("add node who has parent")
	}
	l.addBufferMutex.Lock()
	l.addBuffer = append(l.addBuffer, node)
	l.addBufferMutex.Unlock()
}

func (l *laneList) remove(node *vehicleNode) {
	if node.Parent() != l.list {
		log.Panicf("remove node %v (parent=%v) from wrong parent %+v", node, node.Parent(), l.list)
	}
	l.removeBufferMutex.Lock()
	l.removeBuffer = append(l.removeBuffer, node)
	l.removeBufferMutex.Unlock()
}

// pending 已写入添加缓冲区、尚未生效的车辆
func (l *laneList) pending() []*vehicleNode {
	return l.addBuffer
}

// leaderOf 位置s处的前车（环形），跳过self
func (l *laneList) leaderOf(s float64, self *vehicleNode) *vehicleNode {
	if self != nil && self.Parent() == l.list {
		return self.NextOnRing()
	}
	if n := l.list.FirstAfter(s); n != nil {
		return n
	}
	return l.list.First()
}

// followerOf 位置s处的后车（环形），跳过self
func (l *laneList) followerOf(s float64, self *vehicleNode) *vehicleNode {
	if self != nil && self.Parent() == l.list {
		return self.PrevOnRing()
	}
	if n := l.list.LastBefore(s); n != nil {
		return n
	}
	return l.list.Last()
}
