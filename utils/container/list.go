package container

import (
	"fmt"
	"log"
	"sort"
)

// IHasVAndLength 具有速度和长度属性的接口
// 功能：定义车辆作为链表元素时需要的关键信息接口
type IHasVAndLength interface {
	V() float64      // 获取速度
	Length() float64 // 获取长度
}

// ListNode 按位置排序的双向链表中的节点
// 功能：表示车道上的一辆车，S为车头在车道上的位置
type ListNode[T IHasVAndLength, E any] struct {
	parent     *List[T, E]     // 所属链表
	prev, next *ListNode[T, E] // 前驱和后继节点
	S          float64         // 键值（车头位置）
	Value      T               // 主要值
	Extra      E               // 额外信息
}

func (n *ListNode[T, E]) String() string {
	return fmt.Sprintf("Node{Key:%v, Value:%+v, Extra:%+v}", n.S, n.Value, n.Extra)
}

// Next 获取节点的下一个节点（位置更大，即前车），如果是最后一个节点则返回nil
func (n *ListNode[T, E]) Next() *ListNode[T, E] {
	return n.next
}

// NextOnRing 环形拓扑下的前车
// 功能：最后一个节点的前车是第一个节点；链表只有自己时返回nil
func (n *ListNode[T, E]) NextOnRing() *ListNode[T, E] {
	if n.next != nil {
		return n.next
	}
	if first := n.parent.head; first != n {
		return first
	}
	return nil
}

// PrevOnRing 环形拓扑下的后车
// 功能：第一个节点的后车是最后一个节点；链表只有自己时返回nil
func (n *ListNode[T, E]) PrevOnRing() *ListNode[T, E] {
	if n.prev != nil {
		return n.prev
	}
	if last := n.parent.tail; last != n {
		return last
	}
	return nil
}

// Parent 获取节点所在的链表
func (n *ListNode[T, E]) Parent() *List[T, E] {
	return n.parent
}

// V 获取节点值的速度
func (n *ListNode[T, E]) V() float64 {
	return n.Value.V()
}

// L 获取节点值的长度
func (n *ListNode[T, E]) L() float64 {
	return n.Value.Length()
}

// InsertBefore 在节点前插入新节点
// 功能：在当前节点之前插入一个不属于任何链表的新节点
func (n *ListNode[T, E]) InsertBefore(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.next = n
	add.prev = n.prev
	n.prev = add
	if add.prev != nil {
		add.prev.next = add
	} else {
		add.parent.head = add
	}
	n.parent.length++
}

// InsertAfter 在节点后插入新节点
// 功能：在当前节点之后插入一个不属于任何链表的新节点
func (n *ListNode[T, E]) InsertAfter(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("insert node who already in list")
	}
	add.parent = n.parent
	add.prev = n
	add.next = n.next
	n.next = add
	if add.next != nil {
		add.next.prev = add
	} else {
		add.parent.tail = add
	}
	n.parent.length++
}

// List 按位置升序排列的双向链表
// 功能：存储同一车道上的车辆，头部为位置最小的车辆
type List[T IHasVAndLength, E any] struct {
	ID         string          // 链表标识符
	head, tail *ListNode[T, E] // 头尾节点指针
	length     int             // 链表长度
}

func (l *List[T, E]) String() string {
	return fmt.Sprintf("List{ID:%v}", l.ID)
}

// Keys 获取链表中所有节点的位置
func (l *List[T, E]) Keys() []float64 {
	keys := make([]float64, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		keys = append(keys, node.S)
	}
	return keys
}

// Values 获取链表中所有节点的值
func (l *List[T, E]) Values() []T {
	values := make([]T, 0, l.length)
	for node := l.head; node != nil; node = node.next {
		values = append(values, node.Value)
	}
	return values
}

// Len 获取链表长度
func (l *List[T, E]) Len() int {
	return l.length
}

// PushBack 向链表尾部插入节点
func (l *List[T, E]) PushBack(add *ListNode[T, E]) {
	if add.parent != nil {
		log.Panic("push back node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		// length++和add.parent在InsertAfter中处理
		l.tail.InsertAfter(add)
	}
}

// Remove 从链表中移除节点
// 功能：删除指定节点并清空其指针，节点必须属于当前链表
func (l *List[T, E]) Remove(node *ListNode[T, E]) {
	if node.parent != l {
		log.Panic("remove node from wrong list")
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	node.parent = nil
	l.length--
}

// First 获取链表头部节点（位置最小）
func (l *List[T, E]) First() *ListNode[T, E] {
	return l.head
}

// Last 获取链表尾部节点（位置最大）
func (l *List[T, E]) Last() *ListNode[T, E] {
	return l.tail
}

// FirstAfter 获取第一个位置严格大于s的节点
// 功能：用于查找车道上某一位置的前车，不存在时返回nil
func (l *List[T, E]) FirstAfter(s float64) *ListNode[T, E] {
	for node := l.head; node != nil; node = node.next {
		if node.S > s {
			return node
		}
	}
	return nil
}

// LastBefore 获取最后一个位置小于等于s的节点
// 功能：用于查找车道上某一位置的后车，不存在时返回nil
func (l *List[T, E]) LastBefore(s float64) *ListNode[T, E] {
	for node := l.tail; node != nil; node = node.prev {
		if node.S <= s {
			return node
		}
	}
	return nil
}

// PopUnsorted 移除逆序节点
// 功能：移除前驱节点位置大于自身的节点（例如越过环形道路终点回到起点的车辆）
// 返回：被移除的逆序节点数组
func (l *List[T, E]) PopUnsorted() (unsorted []*ListNode[T, E]) {
	for node := l.head; node != nil; {
		next := node.next
		if node.prev != nil && node.prev.S > node.S {
			l.Remove(node)
			unsorted = append(unsorted, node)
		}
		node = next
	}
	return unsorted
}

// Merge 批量插入节点
// 功能：将节点按位置有序插入链表
// 算法说明：
// 1. 对待插入节点按位置排序
// 2. 与链表做一次归并插入
func (l *List[T, E]) Merge(adds []*ListNode[T, E]) {
	sort.SliceStable(adds, func(i, j int) bool { return adds[i].S < adds[j].S })
	node := l.head
	for _, add := range adds {
		for node != nil && node.S < add.S {
			node = node.next
		}
		if node != nil {
			node.InsertBefore(add)
		} else {
			l.PushBack(add)
		}
	}
}
