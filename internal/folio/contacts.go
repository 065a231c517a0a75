package folio

import (
	"context"
	"slices"
)

// SubmitContact stores a new unread contact message and returns a receipt.
// The input is not validated.
func (s *RecordService) SubmitContact(ctx context.Context, in ContactInput) (*ContactReceipt, error) {
	if err := s.sim.Wait(ctx, s.latency.Submit); err != nil {
		return nil, err
	}

	if s.limiter != nil && !s.limiter.AllowN(s.clock.Now(), 1) {
		s.logger.Warn("contact submission throttled", "email", in.Email)
		return nil, ErrSubmitThrottled
	}

	s.contactsMu.Lock()
	defer s.contactsMu.Unlock()

	c := Contact{
		ID:        s.newID(s.hasContact),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: s.clock.Now(),
		Read:      false,
		Status:    StatusNew,
	}
	s.contacts = slices.Insert(s.contacts, 0, c)
	s.logger.Info("contact message received", "id", c.ID)

	receipt := &ContactReceipt{Message: ContactReceiptMessage, ID: c.ID}
	return receipt, s.persistContacts(ctx)
}

// FetchAllContacts returns every contact message, newest first.
func (s *RecordService) FetchAllContacts(ctx context.Context) ([]Contact, error) {
	if err := s.sim.Wait(ctx, s.latency.Fetch); err != nil {
		return nil, err
	}

	s.contactsMu.RLock()
	defer s.contactsMu.RUnlock()

	out := slices.Clone(s.contacts)
	slices.SortStableFunc(out, func(a, b Contact) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// MarkContactRead flags a message as read. A replied message stays replied.
// Unknown IDs are ignored.
func (s *RecordService) MarkContactRead(ctx context.Context, id string) error {
	return s.updateContact(ctx, id, func(c *Contact) {
		c.Read = true
		if c.Status != StatusReplied {
			c.Status = StatusRead
		}
	})
}

// MarkContactReplied moves a message to the replied state without touching
// its read flag. Unknown IDs are ignored.
func (s *RecordService) MarkContactReplied(ctx context.Context, id string) error {
	return s.updateContact(ctx, id, func(c *Contact) {
		c.Status = StatusReplied
	})
}

// DeleteContact removes a message. Unknown IDs are ignored.
func (s *RecordService) DeleteContact(ctx context.Context, id string) error {
	if err := s.sim.Wait(ctx, s.latency.Delete); err != nil {
		return err
	}

	s.contactsMu.Lock()
	defer s.contactsMu.Unlock()

	i := s.contactIndex(id)
	if i < 0 {
		s.logger.Debug("contact not found, nothing to delete", "id", id)
		return nil
	}
	s.contacts = slices.Delete(s.contacts, i, i+1)
	s.logger.Info("contact deleted", "id", id)
	return s.persistContacts(ctx)
}

// ReloadContacts replaces the in-memory messages with the stored collection,
// picking up messages written by other processes. It does not wait. When the
// document cannot be read the in-memory messages are kept.
func (s *RecordService) ReloadContacts(ctx context.Context) {
	s.contactsMu.Lock()
	defer s.contactsMu.Unlock()

	s.contacts = LoadDocument(ctx, s.store, ContactsKey, s.contacts)
	if s.contacts == nil {
		s.contacts = []Contact{}
	}
}

// UnreadCount returns the number of messages not yet read. It does not wait.
func (s *RecordService) UnreadCount() int {
	s.contactsMu.RLock()
	defer s.contactsMu.RUnlock()

	n := 0
	for _, c := range s.contacts {
		if !c.Read {
			n++
		}
	}
	return n
}

func (s *RecordService) updateContact(ctx context.Context, id string, mutate func(*Contact)) error {
	if err := s.sim.Wait(ctx, s.latency.Status); err != nil {
		return err
	}

	s.contactsMu.Lock()
	defer s.contactsMu.Unlock()

	i := s.contactIndex(id)
	if i < 0 {
		s.logger.Debug("contact not found, nothing to update", "id", id)
		return nil
	}
	mutate(&s.contacts[i])
	s.logger.Info("contact updated", "id", id, "status", s.contacts[i].Status, "read", s.contacts[i].Read)
	return s.persistContacts(ctx)
}

func (s *RecordService) persistContacts(ctx context.Context) error {
	return s.store.Save(context.WithoutCancel(ctx), ContactsKey, s.contacts)
}

func (s *RecordService) contactIndex(id string) int {
	return slices.IndexFunc(s.contacts, func(c Contact) bool { return c.ID == id })
}

func (s *RecordService) hasContact(id string) bool {
	return s.contactIndex(id) >= 0
}
