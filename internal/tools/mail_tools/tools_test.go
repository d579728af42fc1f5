package mail_tools

import (
	"testing"
)

func TestBuildSendRequest(t *testing.T) {
	args := map[string]interface{}{
		"to":      []interface{}{"a@example.com", "b@example.com"},
		"cc":      "c@example.com",
		"subject": "Quarterly numbers",
		"body":    "See below.",
		"html":    true,
	}

	req, errResult := buildSendRequest(args)
	if errResult != nil {
		t.Fatalf("buildSendRequest() returned error result: %v", errResult)
	}
	if len(req.To) != 2 || req.To[0] != "a@example.com" {
		t.Errorf("To = %v, want two addresses", req.To)
	}
	if len(req.Cc) != 1 || req.Cc[0] != "c@example.com" {
		t.Errorf("Cc = %v, want [c@example.com]", req.Cc)
	}
	if req.Bcc != nil {
		t.Errorf("Bcc = %v, want nil", req.Bcc)
	}
	if req.Subject != "Quarterly numbers" || req.Body != "See below." {
		t.Errorf("Subject/Body not carried through: %q / %q", req.Subject, req.Body)
	}
	if !req.HTML {
		t.Error("HTML = false, want true")
	}
}

func TestBuildSendRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "missing to",
			args: map[string]interface{}{
				"subject": "s",
				"body":    "b",
			},
		},
		{
			name: "missing subject",
			args: map[string]interface{}{
				"to":   "a@example.com",
				"body": "b",
			},
		},
		{
			name: "missing body",
			args: map[string]interface{}{
				"to":      "a@example.com",
				"subject": "s",
			},
		},
		{
			name: "non-string to entry",
			args: map[string]interface{}{
				"to":      []interface{}{42},
				"subject": "s",
				"body":    "b",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, errResult := buildSendRequest(tt.args); errResult == nil {
				t.Error("buildSendRequest() = nil error result, want validation failure")
			}
		})
	}
}

func TestOptionalAddressList(t *testing.T) {
	got, err := optionalAddressList(map[string]interface{}{}, "cc")
	if err != nil || got != nil {
		t.Errorf("absent argument: got %v, %v; want nil, nil", got, err)
	}

	got, err = optionalAddressList(map[string]interface{}{"cc": "x@example.com"}, "cc")
	if err != nil || len(got) != 1 || got[0] != "x@example.com" {
		t.Errorf("string argument: got %v, %v", got, err)
	}

	if _, err = optionalAddressList(map[string]interface{}{"cc": 7}, "cc"); err == nil {
		t.Error("numeric argument: want error")
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]interface{}{
		"limit": float64(50),
		"zero":  float64(0),
		"text":  "10",
	}

	if got := intArg(args, "limit", 20); got != 50 {
		t.Errorf("intArg(limit) = %d, want 50", got)
	}
	if got := intArg(args, "zero", 20); got != 20 {
		t.Errorf("intArg(zero) = %d, want default 20", got)
	}
	if got := intArg(args, "text", 20); got != 20 {
		t.Errorf("intArg(text) = %d, want default 20", got)
	}
	if got := intArg(args, "missing", 20); got != 20 {
		t.Errorf("intArg(missing) = %d, want default 20", got)
	}
}

func TestBoolArg(t *testing.T) {
	args := map[string]interface{}{
		"html": true,
		"text": "true",
	}
	if !boolArg(args, "html") {
		t.Error("boolArg(html) = false, want true")
	}
	if boolArg(args, "text") {
		t.Error("boolArg(text) = true, want false for non-bool value")
	}
	if boolArg(args, "missing") {
		t.Error("boolArg(missing) = true, want false")
	}
}
