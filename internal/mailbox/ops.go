package mailbox

import "context"

// threadOp is one per-thread provider call applied across a batch.
type threadOp func(ctx context.Context, tok *Token, threadID string) error

// runBatch applies op to each thread ID sequentially under one token and
// reports per-item outcomes. Items after a failure still run; a batch is
// never collapsed to a single boolean.
func runBatch(ctx context.Context, conn ConnectionProvider, threadIDs []string, op threadOp) (BatchResult, error) {
	tok, err := conn.GetToken(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	for _, id := range threadIDs {
		if err := op(ctx, tok, id); err != nil {
			res.Failed = append(res.Failed, ItemFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

// ArchiveThreads archives each thread, reporting per-thread outcomes.
func ArchiveThreads(ctx context.Context, conn ConnectionProvider, threadIDs []string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, conn.Mailbox().ArchiveThread)
}

// DeleteThreads deletes each thread, reporting per-thread outcomes.
func DeleteThreads(ctx context.Context, conn ConnectionProvider, threadIDs []string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, conn.Mailbox().DeleteThread)
}

// MarkThreadsRead marks each thread read, reporting per-thread outcomes.
func MarkThreadsRead(ctx context.Context, conn ConnectionProvider, threadIDs []string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, conn.Mailbox().MarkRead)
}

// MarkThreadsUnread marks each thread unread, reporting per-thread outcomes.
func MarkThreadsUnread(ctx context.Context, conn ConnectionProvider, threadIDs []string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, conn.Mailbox().MarkUnread)
}

// AddLabelToThreads applies a label to each thread, reporting per-thread
// outcomes.
func AddLabelToThreads(ctx context.Context, conn ConnectionProvider, threadIDs []string, labelID string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, func(ctx context.Context, tok *Token, id string) error {
		return conn.Mailbox().AddLabel(ctx, tok, id, labelID)
	})
}

// RemoveLabelFromThreads removes a label from each thread, reporting
// per-thread outcomes.
func RemoveLabelFromThreads(ctx context.Context, conn ConnectionProvider, threadIDs []string, labelID string) (BatchResult, error) {
	return runBatch(ctx, conn, threadIDs, func(ctx context.Context, tok *Token, id string) error {
		return conn.Mailbox().RemoveLabel(ctx, tok, id, labelID)
	})
}
