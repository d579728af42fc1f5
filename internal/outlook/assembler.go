package outlook

import (
	"sort"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// assembleThreads groups a flat message scan into thread summaries keyed
// by conversation ID. Groups are emitted in the order their key was first
// seen during the scan; the newest message of each group supplies the
// summary fields. At most limit groups are returned (limit <= 0 means no
// cap). A group's message count reflects only what the scan observed; a
// conversation with more messages than the scan ceiling is undercounted
// rather than failed.
func assembleThreads(msgs []graphMessage, limit int) []mailbox.Thread {
	groups := make(map[string][]graphMessage)
	var order []string
	for _, m := range msgs {
		key := m.ConversationID
		if key == "" {
			// A message without a conversation key forms its own
			// single-message thread.
			key = m.ID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	threads := make([]mailbox.Thread, 0, len(order))
	for _, key := range order {
		group := groups[key]
		sortNewestFirst(group)
		threads = append(threads, threadSummary(key, group))
	}
	return threads
}

func sortNewestFirst(group []graphMessage) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].ReceivedDateTime.After(group[j].ReceivedDateTime)
	})
}

// threadSummary derives the uniform thread snapshot from a group already
// sorted newest first.
func threadSummary(key string, group []graphMessage) mailbox.Thread {
	t := mailbox.Thread{
		ID:           key,
		MessageCount: len(group),
		LabelIDs:     folderUnion(group),
	}
	if len(group) == 0 {
		return t
	}
	newest := group[0]
	t.Subject = newest.Subject
	t.From = addressOf(newest.From)
	t.Date = newest.ReceivedDateTime
	t.Snippet = newest.BodyPreview
	return t
}

// folderUnion collects the distinct parent folder IDs across a group in
// first-seen order. Folders play the role labels play elsewhere.
func folderUnion(group []graphMessage) []string {
	var union []string
	seen := make(map[string]bool)
	for _, m := range group {
		if m.ParentFolderID == "" || seen[m.ParentFolderID] {
			continue
		}
		seen[m.ParentFolderID] = true
		union = append(union, m.ParentFolderID)
	}
	return union
}

func addressOf(r *graphRecipient) mailbox.Address {
	if r == nil {
		return mailbox.Address{}
	}
	return mailbox.Address{
		Email: r.EmailAddress.Address,
		Name:  r.EmailAddress.Name,
	}
}

func addressList(rs []graphRecipient) []mailbox.Address {
	if len(rs) == 0 {
		return nil
	}
	out := make([]mailbox.Address, 0, len(rs))
	for i := range rs {
		out = append(out, addressOf(&rs[i]))
	}
	return out
}

func messageOf(m graphMessage) mailbox.Message {
	threadID := m.ConversationID
	if threadID == "" {
		threadID = m.ID
	}
	return mailbox.Message{
		ID:       m.ID,
		ThreadID: threadID,
		Subject:  m.Subject,
		From:     addressOf(m.From),
		To:       addressList(m.ToRecipients),
		Cc:       addressList(m.CcRecipients),
		Date:     m.ReceivedDateTime,
		Snippet:  m.BodyPreview,
	}
}
