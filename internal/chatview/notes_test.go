package chatview

import (
	"context"
	"fmt"
	"testing"
)

func seedNote(t *testing.T, f *fixture, conversationID string, blocks []NoteBlock) *Note {
	t.Helper()
	note, err := f.notes.Insert(context.Background(), conversationID, blocks)
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return note
}

func TestNotesFetchOncePerConversation(t *testing.T) {
	f := newFixture(t)
	seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "rencana"}})
	conv := f.open(t, "g-1")

	first, err := conv.LoadNotes(context.Background())
	if err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("notes: want=1 got=%d", len(first))
	}

	// a note added remotely after the first load is not picked up by a
	// second call; notes are fetch-once per conversation open
	seedNote(t, f, "g-1", nil)
	second, err := conv.LoadNotes(context.Background())
	if err != nil {
		t.Fatalf("LoadNotes again: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second load should return the local copy, got %d notes", len(second))
	}
}

func TestNoteEditsLocalUntilSave(t *testing.T) {
	f := newFixture(t)
	saved := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "asli"}})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}

	if err := conv.StartEdit(saved.ID); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if err := conv.EditBlock(0, "diubah"); err != nil {
		t.Fatalf("EditBlock: %v", err)
	}
	if err := conv.AddBlock(); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if err := conv.EditBlock(1, "baris kedua"); err != nil {
		t.Fatalf("EditBlock(1): %v", err)
	}

	// remote still holds the last-saved state
	remote, _ := f.notes.ListByConversation(context.Background(), "g-1")
	if got := remote[0].Blocks[0].Text; got != "asli" {
		t.Fatalf("edits leaked to the store before save: %q", got)
	}

	note, err := conv.SaveNote(context.Background())
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if len(note.Blocks) != 2 || note.Blocks[0].Text != "diubah" {
		t.Fatalf("saved blocks: %+v", note.Blocks)
	}
	remote, _ = f.notes.ListByConversation(context.Background(), "g-1")
	if got := len(remote[0].Blocks); got != 2 {
		t.Fatalf("store should hold the full block sequence, got %d", got)
	}
	if id, _ := conv.EditingNote(); id != "" {
		t.Fatalf("save should exit edit mode, still editing %q", id)
	}
}

func TestNoteCancelEditDiscardsDraft(t *testing.T) {
	f := newFixture(t)
	saved := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "asli"}})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}

	if err := conv.StartEdit(saved.ID); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if err := conv.EditBlock(0, "coretan"); err != nil {
		t.Fatalf("EditBlock: %v", err)
	}
	conv.CancelEdit()

	if id, _ := conv.EditingNote(); id != "" {
		t.Fatalf("cancel should exit edit mode")
	}
	notes := conv.Notes()
	if got := notes[0].Blocks[0].Text; got != "asli" {
		t.Fatalf("cancel must keep the last-saved state, got %q", got)
	}
	remote, _ := f.notes.ListByConversation(context.Background(), "g-1")
	if got := remote[0].Blocks[0].Text; got != "asli" {
		t.Fatalf("cancel must not write to the store, got %q", got)
	}
}

func TestNoteSaveFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	saved := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "asli"}})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	if err := conv.StartEdit(saved.ID); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}
	if err := conv.EditBlock(0, "belum tersimpan"); err != nil {
		t.Fatalf("EditBlock: %v", err)
	}

	f.notes.updateErr = fmt.Errorf("store unavailable")
	if _, err := conv.SaveNote(context.Background()); err == nil {
		t.Fatalf("save failure should surface")
	}
	id, draft := conv.EditingNote()
	if id != saved.ID {
		t.Fatalf("failed save must stay in edit mode")
	}
	if draft[0].Text != "belum tersimpan" {
		t.Fatalf("failed save must preserve the draft, got %q", draft[0].Text)
	}
}

func TestAddNoteEntersEditMode(t *testing.T) {
	f := newFixture(t)
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}

	note, err := conv.AddNote(context.Background())
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	id, draft := conv.EditingNote()
	if id != note.ID {
		t.Fatalf("new note should enter edit mode immediately")
	}
	if len(draft) != 0 {
		t.Fatalf("new note draft should start empty, got %d blocks", len(draft))
	}
	if got := len(conv.Notes()); got != 1 {
		t.Fatalf("new note should appear locally, got %d", got)
	}
}

func TestDeleteNoteRemoteThenLocal(t *testing.T) {
	f := newFixture(t)
	saved := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "hapus"}})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	if err := conv.StartEdit(saved.ID); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}

	if err := conv.DeleteNote(context.Background(), saved.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if got := len(conv.Notes()); got != 0 {
		t.Fatalf("note should leave the local copy: %d", got)
	}
	remote, _ := f.notes.ListByConversation(context.Background(), "g-1")
	if got := len(remote); got != 0 {
		t.Fatalf("note should leave the store: %d", got)
	}
	if id, _ := conv.EditingNote(); id != "" {
		t.Fatalf("deleting the edited note should exit edit mode")
	}
}

func TestNoteBlockDelete(t *testing.T) {
	f := newFixture(t)
	saved := seedNote(t, f, "g-1", []NoteBlock{
		{Type: "text", Text: "satu"},
		{Type: "text", Text: "dua"},
	})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	if err := conv.StartEdit(saved.ID); err != nil {
		t.Fatalf("StartEdit: %v", err)
	}

	if err := conv.DeleteBlock(0); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	_, draft := conv.EditingNote()
	if len(draft) != 1 || draft[0].Text != "dua" {
		t.Fatalf("draft after delete: %+v", draft)
	}
	if err := conv.DeleteBlock(5); err != ErrBlockOutOfRange {
		t.Fatalf("out-of-range delete: want=%v got=%v", ErrBlockOutOfRange, err)
	}
}

func TestOnlyOneNoteInEditMode(t *testing.T) {
	f := newFixture(t)
	first := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "satu"}})
	second := seedNote(t, f, "g-1", []NoteBlock{{Type: "text", Text: "dua"}})
	conv := f.open(t, "g-1")
	if _, err := conv.LoadNotes(context.Background()); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}

	if err := conv.StartEdit(first.ID); err != nil {
		t.Fatalf("StartEdit(first): %v", err)
	}
	if err := conv.EditBlock(0, "coretan"); err != nil {
		t.Fatalf("EditBlock: %v", err)
	}
	if err := conv.StartEdit(second.ID); err != nil {
		t.Fatalf("StartEdit(second): %v", err)
	}

	id, draft := conv.EditingNote()
	if id != second.ID {
		t.Fatalf("edit mode should move to the second note")
	}
	if draft[0].Text != "dua" {
		t.Fatalf("draft should reset from the second note, got %q", draft[0].Text)
	}
	// the first note's abandoned draft never reached the store
	remote, _ := f.notes.ListByConversation(context.Background(), "g-1")
	if got := remote[0].Blocks[0].Text; got != "satu" {
		t.Fatalf("abandoned draft leaked: %q", got)
	}
}
