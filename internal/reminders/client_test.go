package reminders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

type fakeBackend struct {
	mu       sync.Mutex
	records  []mailbox.ReminderRecord
	pageSize int

	creates []createRequest
	deletes []string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /reminders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req createRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.creates = append(f.creates, req)
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("DELETE /reminders/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		for _, rec := range f.records {
			if rec.ReminderID == id {
				f.deletes = append(f.deletes, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("GET /reminders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		skip := 0
		if tok := r.URL.Query().Get("pageToken"); tok != "" {
			skip, _ = strconv.Atoi(tok)
		}
		size := f.pageSize
		if size <= 0 {
			size = len(f.records)
		}
		end := skip + size
		next := ""
		if end < len(f.records) {
			next = strconv.Itoa(end)
		} else {
			end = len(f.records)
		}
		json.NewEncoder(w).Encode(listResponse{
			Reminders: f.records[skip:end],
			NextToken: next,
		})
	})

	return mux
}

func testClient(t *testing.T, f *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestCreateReminderSubmitsCallerID(t *testing.T) {
	f := &fakeBackend{}
	c := testClient(t, f)

	trigger := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	err := c.CreateReminder(context.Background(), testToken(), "rem-1", "t1", []string{"m1", "m2"}, trigger)
	require.NoError(t, err)

	require.Len(t, f.creates, 1)
	assert.Equal(t, "rem-1", f.creates[0].ReminderID)
	assert.Equal(t, "t1", f.creates[0].ThreadID)
	assert.Equal(t, []string{"m1", "m2"}, f.creates[0].MessageIDs)
	assert.Equal(t, trigger, f.creates[0].TriggerAt)
	assert.False(t, f.creates[0].ClientCreatedAt.IsZero())
}

func TestCancelReminderUnknownID(t *testing.T) {
	f := &fakeBackend{}
	c := testClient(t, f)

	err := c.CancelReminder(context.Background(), testToken(), "rem-missing")
	require.Error(t, err)
	assert.True(t, mailbox.IsKind(err, mailbox.KindNotFound))
}

func TestListRemindersFollowsToken(t *testing.T) {
	f := &fakeBackend{pageSize: 2}
	for i := 0; i < 5; i++ {
		f.records = append(f.records, mailbox.ReminderRecord{
			ReminderID: "rem-" + strconv.Itoa(i),
			ThreadID:   "t-" + strconv.Itoa(i),
		})
	}
	c := testClient(t, f)

	records, err := c.ListReminders(context.Background(), testToken(), 0)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "rem-4", records[4].ReminderID)
}

func TestListRemindersHonorsLimit(t *testing.T) {
	f := &fakeBackend{}
	for i := 0; i < 5; i++ {
		f.records = append(f.records, mailbox.ReminderRecord{ReminderID: "rem-" + strconv.Itoa(i)})
	}
	c := testClient(t, f)

	records, err := c.ListReminders(context.Background(), testToken(), 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestBackendErrorPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream drained"))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(WithBaseURL(srv.URL))

	err := c.CreateReminder(context.Background(), testToken(), "rem-1", "t1", nil, time.Now())
	require.Error(t, err)
	var me *mailbox.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 502, me.Status)
	assert.Equal(t, "upstream drained", me.Detail)
}
