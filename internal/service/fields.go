package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ajayblog/internal/models"
)

// PostFields carries the client-supplied post attributes of a create or
// update. A nil field was absent from the request.
type PostFields struct {
	Title     *string
	Excerpt   *string
	Content   *string
	Category  *string
	Author    *string
	Date      *time.Time
	Published *bool
	Tags      *[]string
	ReadTime  *int
}

// ParseTags splits a comma-separated list, trimming each entry and dropping
// empty ones. Order is preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseBoolLike accepts true/false, 1/0, yes/no and on/off in any case.
func ParseBoolLike(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", raw)
}

// parseReadTime reports false for anything but a positive whole number, in
// which case the caller applies the default.
func parseReadTime(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, models.NewValidationError("date must be an ISO-8601 date or timestamp")
}

// FieldsFromForm builds PostFields from multipart or urlencoded form values.
// lookup reports whether a key was present at all.
func FieldsFromForm(lookup func(key string) (string, bool)) (PostFields, error) {
	var f PostFields

	for key, dst := range map[string]**string{
		"title":    &f.Title,
		"excerpt":  &f.Excerpt,
		"content":  &f.Content,
		"category": &f.Category,
		"author":   &f.Author,
	} {
		if v, ok := lookup(key); ok {
			*dst = &v
		}
	}

	if v, ok := lookup("tags"); ok {
		tags := ParseTags(v)
		f.Tags = &tags
	}
	if v, ok := lookup("published"); ok {
		b, err := ParseBoolLike(v)
		if err != nil {
			return f, models.NewValidationError("published must be true or false")
		}
		f.Published = &b
	}
	if v, ok := lookup("readTime"); ok {
		if n, valid := parseReadTime(v); valid {
			f.ReadTime = &n
		}
	}
	if v, ok := lookup("date"); ok && strings.TrimSpace(v) != "" {
		d, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.Date = &d
	}

	return f, nil
}

// postFieldKeys are the body keys FieldsFromForm reads. Others are ignored.
var postFieldKeys = map[string]bool{
	"title": true, "excerpt": true, "content": true, "category": true, "author": true,
	"date": true, "published": true, "tags": true, "readTime": true,
}

// FieldsFromJSON builds PostFields from a JSON object. tags may be a string
// or an array, published a boolean or boolean-like string, readTime a
// number or numeric string.
func FieldsFromJSON(body []byte) (PostFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return PostFields{}, models.NewValidationError("Invalid request body")
	}

	values := make(map[string]string, len(raw))
	for key, msg := range raw {
		if !postFieldKeys[key] || string(msg) == "null" {
			continue
		}
		switch key {
		case "tags":
			var list []string
			if err := json.Unmarshal(msg, &list); err == nil {
				values[key] = strings.Join(list, ",")
				continue
			}
		case "published":
			var b bool
			if err := json.Unmarshal(msg, &b); err == nil {
				values[key] = strconv.FormatBool(b)
				continue
			}
		case "readTime":
			var n json.Number
			if err := json.Unmarshal(msg, &n); err == nil {
				values[key] = n.String()
			}
			// Anything unusable falls back to the default like a bad string does.
			continue
		}

		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return PostFields{}, models.NewValidationError(fmt.Sprintf("%s has the wrong type", key))
		}
		values[key] = s
	}

	return FieldsFromForm(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}
