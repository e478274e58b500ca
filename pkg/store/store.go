// Package store persists per-account post history in a single JSON document.
//
// The document layout is shared with older tooling that wrote the same cache:
//
//	{
//	    "posts": [],
//	    "accounts": [
//	        {"id": "...", "nickname": "...", "firefox_profile": "...", "topic": "...", "posts": [...]}
//	    ]
//	}
//
// The top-level "posts" value is legacy. It is preserved verbatim on rewrite,
// whatever its shape, and ignored on read. Keys this package does not know
// about, at any level, are carried through a rewrite unchanged.
//
// Every write rewrites the whole document through a temp file and a rename.
// Calls within one process are serialized; several processes writing the same
// file at once are not supported and the last writer wins.
package store

import (
	"encoding/json"
	"errors"
	"time"
)

// DateLayout is the timestamp format stored in Post.Date.
const DateLayout = "01/02/2006, 15:04:05"

var (
	ErrAccountNotFound = errors.New("store: account not found")
	ErrAccountExists   = errors.New("store: account already exists")
)

// Post is a single published update.
type Post struct {
	Content string `json:"content"`
	Date    string `json:"date"`

	// Extra holds keys written by other tools
	Extra map[string]json.RawMessage `json:"-"`
}

func (p *Post) UnmarshalJSON(b []byte) error {
	type plain Post
	var v plain
	extra, err := decodeWithExtra(b, &v, "content", "date")
	if err != nil {
		return err
	}
	v.Extra = extra
	*p = Post(v)
	return nil
}

func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	return encodeWithExtra(plain(p), p.Extra)
}

// NewPost stamps content with t formatted as DateLayout.
func NewPost(content string, t time.Time) Post {
	return Post{Content: content, Date: t.Format(DateLayout)}
}

// Account is the per-account record holding its post history.
type Account struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname,omitempty"`
	ProfilePath string `json:"firefox_profile,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Posts       []Post `json:"posts"`

	// Extra holds keys written by other tools
	Extra map[string]json.RawMessage `json:"-"`
}

func (a *Account) UnmarshalJSON(b []byte) error {
	type plain Account
	var v plain
	extra, err := decodeWithExtra(b, &v, "id", "nickname", "firefox_profile", "topic", "posts")
	if err != nil {
		return err
	}
	v.Extra = extra
	*a = Account(v)
	return nil
}

func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return encodeWithExtra(plain(a), a.Extra)
}

// Document is the whole persisted cache file.
type Document struct {
	// Posts is the legacy top-level value, kept as raw JSON
	Posts    json.RawMessage `json:"posts"`
	Accounts []Account       `json:"accounts"`

	// Extra holds top-level keys written by other tools
	Extra map[string]json.RawMessage `json:"-"`
}

func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	var v plain
	extra, err := decodeWithExtra(b, &v, "posts", "accounts")
	if err != nil {
		return err
	}
	v.Extra = extra
	*d = Document(v)
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return encodeWithExtra(plain(d), d.Extra)
}

// decodeWithExtra decodes b into v and returns the object keys that are not
// in known, or nil when there are none.
func decodeWithExtra(b []byte, v any, known ...string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// encodeWithExtra encodes v and adds the extra keys it does not already set.
func encodeWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = raw
		}
	}
	return json.Marshal(fields)
}

// find returns the index of the record with the given id, or -1.
func (d *Document) find(id string) int {
	for i := range d.Accounts {
		if d.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize makes sure the slices marshal as [] rather than null.
func (d *Document) normalize() {
	if len(d.Posts) == 0 {
		d.Posts = json.RawMessage("[]")
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	for i := range d.Accounts {
		if d.Accounts[i].Posts == nil {
			d.Accounts[i].Posts = []Post{}
		}
	}
}

// PostStore is the read/append interface the poster depends on.
type PostStore interface {
	GetPosts(accountID string) ([]Post, error)
	AddPost(accountID string, post Post) error
}
