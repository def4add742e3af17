package chatview

// Cache is the in-memory ordered view of one conversation's messages.
// It is the single idempotent sink both writers feed: the optimistic
// send pipeline and the change feed may each try to introduce the same
// logical message, and identifier-based dedup here is what keeps the
// conversation duplicate-free.
//
// Cache is not safe for concurrent use; Conversation serializes access
// behind its mutex.
type Cache struct {
	order   []*Message
	present map[string]struct{}

	// attachment events whose owning message was never seen, dropped
	// by policy
	droppedAttachments int
}

func NewCache() *Cache {
	return &Cache{present: make(map[string]struct{})}
}

// messageLess orders by creation time ascending, ties broken by id so
// the order is total.
func messageLess(a, b *Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Load replaces the entire cache contents with msgs, assumed already
// ordered by the store.
func (c *Cache) Load(msgs []*Message) {
	c.order = c.order[:0]
	c.present = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if _, ok := c.present[m.ID]; ok {
			continue
		}
		c.order = append(c.order, m)
		c.present[m.ID] = struct{}{}
	}
}

// InsertIfAbsent adds msg unless an entry with the same id exists.
// New arrivals are usually newer than the tail, so appending is the
// fast path; out-of-order arrivals walk back to their slot.
func (c *Cache) InsertIfAbsent(msg *Message) bool {
	if msg == nil {
		return false
	}
	if _, ok := c.present[msg.ID]; ok {
		return false
	}
	pos := len(c.order)
	for pos > 0 && messageLess(msg, c.order[pos-1]) {
		pos--
	}
	c.order = append(c.order, nil)
	copy(c.order[pos+1:], c.order[pos:])
	c.order[pos] = msg
	c.present[msg.ID] = struct{}{}
	return true
}

// PatchAttachment merges an attachment into its owning message. If the
// owner is not in the cache the event is dropped and counted; an
// out-of-order attachment arrival is not an error. The owning entry is
// replaced with an updated copy, never written in place, so pointers
// handed out by Messages before the patch stay stable.
func (c *Cache) PatchAttachment(messageID string, att Attachment) bool {
	idx := c.indexOf(messageID)
	if idx < 0 {
		c.droppedAttachments++
		return false
	}
	patched := *c.order[idx]
	patched.Attachments = make([]Attachment, len(c.order[idx].Attachments))
	copy(patched.Attachments, c.order[idx].Attachments)

	replaced := false
	for i := range patched.Attachments {
		if patched.Attachments[i].ID == att.ID {
			patched.Attachments[i] = att
			replaced = true
			break
		}
	}
	if !replaced {
		patched.Attachments = append(patched.Attachments, att)
	}
	c.order[idx] = &patched
	return true
}

// RepointAuthor swaps every message by the author for a copy carrying
// the new profile, returning how many entries changed. Like
// PatchAttachment this replaces entries rather than mutating them.
func (c *Cache) RepointAuthor(author *Author) int {
	if author == nil || author.ID == "" {
		return 0
	}
	changed := 0
	for i, m := range c.order {
		if m.AuthorID != author.ID {
			continue
		}
		updated := *m
		updated.Author = author
		c.order[i] = &updated
		changed++
	}
	return changed
}

// Remove deletes a message (attachments go with it).
func (c *Cache) Remove(messageID string) bool {
	if _, ok := c.present[messageID]; !ok {
		return false
	}
	delete(c.present, messageID)
	for i, m := range c.order {
		if m.ID == messageID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return true
		}
	}
	return false
}

// Reconcile swaps a provisional entry for the authoritative record at
// the same position. If the feed already delivered the authoritative
// record, the provisional entry is simply dropped.
func (c *Cache) Reconcile(provisionalID string, authoritative *Message) {
	if authoritative == nil {
		c.Remove(provisionalID)
		return
	}
	if _, ok := c.present[authoritative.ID]; ok {
		c.Remove(provisionalID)
		return
	}
	for i, m := range c.order {
		if m.ID == provisionalID {
			c.order[i] = authoritative
			delete(c.present, provisionalID)
			c.present[authoritative.ID] = struct{}{}
			return
		}
	}
	// provisional already gone, keep the authoritative record anyway
	c.InsertIfAbsent(authoritative)
}

// Get returns the cached message with the given id, or nil.
func (c *Cache) Get(messageID string) *Message {
	if idx := c.indexOf(messageID); idx >= 0 {
		return c.order[idx]
	}
	return nil
}

func (c *Cache) indexOf(messageID string) int {
	if _, ok := c.present[messageID]; !ok {
		return -1
	}
	for i, m := range c.order {
		if m.ID == messageID {
			return i
		}
	}
	return -1
}

// Messages returns the current ordered view. The slice is a copy; the
// entries are shared but never written after they enter the cache
// (updates replace entries), so a snapshot is safe to read while the
// feed keeps applying events.
func (c *Cache) Messages() []*Message {
	out := make([]*Message, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Cache) Len() int { return len(c.order) }

// DroppedAttachments reports how many attachment events were discarded
// because their owning message was unknown.
func (c *Cache) DroppedAttachments() int { return c.droppedAttachments }
