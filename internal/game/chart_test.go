package game

import (
	"fmt"
	"testing"
)

func chain() *Chart {
	c := &Chart{
		Pages: []Page{{StartTime: 0, EndTime: 2}, {StartTime: 2, EndTime: 4}},
		Notes: []*NoteModel{
			{ID: 3, Type: DragChild, StartTime: 1.5, EndTime: 1.5, NextID: -1},
			{ID: 1, Type: DragHead, StartTime: 1, EndTime: 1, NextID: 2},
			{ID: 2, Type: DragChild, StartTime: 1.25, EndTime: 1.25, NextID: 3},
			{ID: 4, Type: Click, StartTime: 1, EndTime: 1, PageIndex: 0},
			{ID: 5, Type: Hold, StartTime: 3, EndTime: 3.5, PageIndex: 1},
		},
	}
	c.Index()
	return c
}

func TestIndex(t *testing.T) {
	c := chain()
	if fmt.Sprint(c.Chronological) != "[1 4 2 3 5]" {
		t.Log(c.Chronological)
		t.Fail()
	}
	if n, ok := c.Note(5); !ok || n.Type != Hold {
		t.Fail()
	}
	if _, ok := c.Note(9); ok {
		t.Fail()
	}
}

func TestDragEnd(t *testing.T) {
	c := chain()
	for _, id := range []int{1, 2, 3} {
		if end := c.DragEnd(id); nil == end || end.ID != 3 {
			t.Log(id, end)
			t.Fail()
		}
	}
	if end := c.DragEnd(4); end.ID != 4 {
		t.Fail()
	}
	if nil != c.DragEnd(42) {
		t.Fail()
	}
}

func TestPageAt(t *testing.T) {
	c := chain()
	tests := map[float64]int{0: 0, 1.9: 0, 2: 0, 2.1: 1, 4: 1, 4.5: 2}
	for time, page := range tests {
		if got := c.PageAt(time); got != page {
			t.Log(time, got, page)
			t.Fail()
		}
	}
	if c.EndTime() != 3.5 {
		t.Fail()
	}
	if len(c.NotesOnPage(1)) != 1 {
		t.Fail()
	}
}
