package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

// ProfileTypeSuffix is the struct tag suffix every profile object type carries.
const ProfileTypeSuffix = "::profile::Profile"

// decodeProfile converts one multi-get response into a Profile. Objects that were
// not found decode to nil; structurally unexpected objects are a *DecodingError.
func decodeProfile(objectID string, resp suiclient.ObjectResponse) (*Profile, error) {
	if resp.Error != nil || resp.Data == nil {
		return nil, nil
	}
	data := resp.Data

	fail := func(reason string) (*Profile, error) {
		return nil, &DecodingError{ObjectID: objectID, Reason: reason}
	}

	if data.Content == nil {
		return fail("missing content; must request with showContent")
	}
	if data.Content.DataType != suiclient.DataTypeMoveObject {
		return fail("content is not a move object: " + data.Content.DataType)
	}
	if !strings.HasSuffix(data.Content.Type, ProfileTypeSuffix) {
		return fail("unexpected object type " + data.Content.Type)
	}
	if data.Owner == nil {
		return fail("missing owner; must request with showOwner")
	}
	if !data.Owner.IsOwned() {
		return fail("expected an owned object, got " + data.Owner.Kind.String())
	}

	id, err := suiclient.NormalizeAddress(data.ObjectID)
	if err != nil {
		return fail("invalid object id " + data.ObjectID)
	}
	if id != objectID {
		return fail("response is for object " + id)
	}
	owner, err := suiclient.NormalizeAddress(data.Owner.Address)
	if err != nil {
		return fail("invalid owner " + data.Owner.Address)
	}

	fields := data.Content.Fields
	p := &Profile{ID: id, Owner: owner}
	for name, dst := range map[string]*string{
		"name":        &p.Name,
		"image_url":   &p.ImageURL,
		"description": &p.Description,
	} {
		if err := stringField(fields, name, dst); err != nil {
			return fail(err.Error())
		}
	}

	var raw string
	if err := stringField(fields, "data", &raw); err != nil {
		return fail(err.Error())
	}
	if raw != "" {
		if !json.Valid([]byte(raw)) {
			return fail("data field is not valid JSON")
		}
		p.Data = json.RawMessage(raw)
	}
	return p, nil
}

// stringField reads an optional string field; absent or null leaves dst empty.
func stringField(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s is not a string", name)
	}
	return nil
}
