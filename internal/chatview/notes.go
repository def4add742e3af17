package chatview

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotesUnavailable = errors.New("notes store not configured")
	ErrNoNoteInEdit     = errors.New("no note in edit mode")
	ErrUnknownNote      = errors.New("note not in conversation")
	ErrBlockOutOfRange  = errors.New("block index out of range")
)

// Notes are not fed by the change stream the way messages are: they are
// fetched once per conversation open, edited as a purely local draft,
// and written back whole on save. Feed NoteSaved events from other
// members still land (see apply), but a local draft in progress is
// never clobbered by them.

// LoadNotes fetches the conversation's notes on first call; later calls
// return the local copy.
func (c *Conversation) LoadNotes(ctx context.Context) ([]*Note, error) {
	if c.deps.Notes == nil {
		return nil, ErrNotesUnavailable
	}
	c.mu.Lock()
	if c.notesLoaded {
		defer c.mu.Unlock()
		return c.notesSnapshotLocked(), nil
	}
	gen := c.gen
	c.mu.Unlock()

	notes, err := c.deps.Notes.ListByConversation(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return nil, ErrConversationClosed
	}
	c.notes = notes
	c.notesLoaded = true
	return c.notesSnapshotLocked(), nil
}

func (c *Conversation) Notes() []*Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notesSnapshotLocked()
}

func (c *Conversation) notesSnapshotLocked() []*Note {
	out := make([]*Note, len(c.notes))
	copy(out, c.notes)
	return out
}

// AddNote creates an empty note remotely and puts it straight into edit
// mode with an empty draft.
func (c *Conversation) AddNote(ctx context.Context) (*Note, error) {
	if c.deps.Notes == nil {
		return nil, ErrNotesUnavailable
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	note, err := c.deps.Notes.Insert(ctx, c.id, []NoteBlock{})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return nil, ErrConversationClosed
	}
	c.upsertNoteLocked(note)
	c.editingNote = note.ID
	c.noteDraft = []NoteBlock{}
	return note, nil
}

// StartEdit copies the note's blocks into the local draft. Only one
// note is in edit mode at a time; starting a new edit discards any
// previous unsaved draft.
func (c *Conversation) StartEdit(noteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.notes {
		if n.ID == noteID {
			c.editingNote = noteID
			c.noteDraft = append([]NoteBlock(nil), n.Blocks...)
			return nil
		}
	}
	return ErrUnknownNote
}

// EditingNote returns the id of the note in edit mode ("" if none) and
// a copy of the current draft blocks.
func (c *Conversation) EditingNote() (string, []NoteBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingNote, append([]NoteBlock(nil), c.noteDraft...)
}

// AddBlock appends an empty text block to the draft.
func (c *Conversation) AddBlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingNote == "" {
		return ErrNoNoteInEdit
	}
	c.noteDraft = append(c.noteDraft, NoteBlock{Type: "text"})
	return nil
}

// EditBlock replaces the text of the draft block at index i.
func (c *Conversation) EditBlock(i int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingNote == "" {
		return ErrNoNoteInEdit
	}
	if i < 0 || i >= len(c.noteDraft) {
		return ErrBlockOutOfRange
	}
	c.noteDraft[i].Text = text
	return nil
}

// DeleteBlock removes the draft block at index i.
func (c *Conversation) DeleteBlock(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingNote == "" {
		return ErrNoNoteInEdit
	}
	if i < 0 || i >= len(c.noteDraft) {
		return ErrBlockOutOfRange
	}
	c.noteDraft = append(c.noteDraft[:i], c.noteDraft[i+1:]...)
	return nil
}

// SaveNote writes the full draft block sequence over the remote record
// and exits edit mode. The saved record becomes the local copy.
func (c *Conversation) SaveNote(ctx context.Context) (*Note, error) {
	if c.deps.Notes == nil {
		return nil, ErrNotesUnavailable
	}
	c.mu.Lock()
	if c.editingNote == "" {
		c.mu.Unlock()
		return nil, ErrNoNoteInEdit
	}
	noteID := c.editingNote
	blocks := append([]NoteBlock(nil), c.noteDraft...)
	gen := c.gen
	c.mu.Unlock()

	saved, err := c.deps.Notes.Update(ctx, noteID, blocks)
	if err != nil {
		// draft stays so the user can retry
		return nil, fmt.Errorf("save note: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live(gen) {
		c.upsertNoteLocked(saved)
		if c.editingNote == noteID {
			c.editingNote = ""
			c.noteDraft = nil
		}
	}
	return saved, nil
}

// CancelEdit discards the draft; the local copy keeps the last-saved
// blocks.
func (c *Conversation) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editingNote = ""
	c.noteDraft = nil
}

// DeleteNote removes the note remotely, then locally.
func (c *Conversation) DeleteNote(ctx context.Context, noteID string) error {
	if c.deps.Notes == nil {
		return ErrNotesUnavailable
	}
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	if err := c.deps.Notes.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return nil
	}
	for i, n := range c.notes {
		if n.ID == noteID {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			break
		}
	}
	if c.editingNote == noteID {
		c.editingNote = ""
		c.noteDraft = nil
	}
	return nil
}

// upsertNoteLocked replaces the stored copy of a note, or appends it.
// A draft in progress for the same note is left alone; the stored copy
// just reflects the latest save.
func (c *Conversation) upsertNoteLocked(note *Note) {
	for i, n := range c.notes {
		if n.ID == note.ID {
			c.notes[i] = note
			return
		}
	}
	c.notes = append(c.notes, note)
}
