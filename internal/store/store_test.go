package store

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestGetCreatesEmptyDocument(t *testing.T) {
	s := New()

	doc := s.Get("doc1")
	assert.Equal(t, "doc1", doc.ID)
	assert.Equal(t, "", doc.Content)

	// same document on repeat, not a fresh one
	before := doc.LastModified
	doc = s.Get("doc1")
	assert.Equal(t, before, doc.LastModified)
}

func TestLookupDoesNotCreate(t *testing.T) {
	s := New()

	_, ok := s.Lookup("missing")
	assert.Equal(t, false, ok)
	assert.Equal(t, 0, len(s.List()))

	s.Get("doc1")
	doc, ok := s.Lookup("doc1")
	assert.Equal(t, true, ok)
	assert.Equal(t, "doc1", doc.ID)
}

func TestApplyEditReplacesContent(t *testing.T) {
	s := New()

	doc := s.ApplyEdit("doc1", "hello")
	assert.Equal(t, "hello", doc.Content)

	first := doc.LastModified
	time.Sleep(time.Millisecond)
	doc = s.ApplyEdit("doc1", "hello world")
	assert.Equal(t, "hello world", doc.Content)
	assert.Equal(t, true, doc.LastModified.After(first))
}

func TestCreateRejectsDuplicates(t *testing.T) {
	s := New()

	err := s.Create("doc1", "initial")
	assert.Equal(t, nil, err)
	err = s.Create("doc1", "other")
	assert.Equal(t, ErrExists, err)

	doc, _ := s.Lookup("doc1")
	assert.Equal(t, "initial", doc.Content)
}

func TestListSnapshot(t *testing.T) {
	s := New()

	s.ApplyEdit("a", "one")
	time.Sleep(time.Millisecond)
	s.ApplyEdit("b", "twenty-two")

	infos := s.List()
	assert.Equal(t, 2, len(infos))

	byID := map[string]Info{}
	for _, info := range infos {
		byID[info.ID] = info
	}
	assert.Equal(t, 3, byID["a"].Size)
	assert.Equal(t, 10, byID["b"].Size)
	assert.Equal(t, true, byID["b"].LastModified.After(byID["a"].LastModified))

	// the snapshot doesn't track later edits
	s.ApplyEdit("a", "one more")
	assert.Equal(t, 3, byID["a"].Size)
}

func TestConcurrentEditsAndListing(t *testing.T) {
	s := New()
	done := make(chan bool)
	for i := 0; i < 4; i += 1 {
		go func(id string) {
			for j := 0; j < 100; j += 1 {
				s.ApplyEdit(id, "content")
				s.List()
			}
			done <- true
		}([]string{"a", "b", "a", "b"}[i])
	}
	for i := 0; i < 4; i += 1 {
		<-done
	}
	assert.Equal(t, 2, len(s.List()))
}
