package profile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polymedia/polymedia-profile/pkg/suiclient"
)

func TestDecodeProfile(t *testing.T) {
	id, owner := addr(t, 0x1a), addr(t, 0xa)
	addressOwned := suiclient.Owner{Kind: suiclient.OwnerAddress, Address: owner}

	t.Run("valid", func(t *testing.T) {
		p, err := decodeProfile(id, profileObject(id, addressOwned, "Alice", `{"k":[1,2]}`))
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, &Profile{
			ID:          id,
			Name:        "Alice",
			ImageURL:    "https://img.example/Alice",
			Description: "Alice description",
			Data:        json.RawMessage(`{"k":[1,2]}`),
			Owner:       owner,
		}, p)
	})

	t.Run("object owned", func(t *testing.T) {
		parent := addr(t, 0xfeed)
		p, err := decodeProfile(id, profileObject(id, suiclient.Owner{Kind: suiclient.OwnerObject, Address: parent}, "Alice", ""))
		require.NoError(t, err)
		assert.Equal(t, parent, p.Owner)
		assert.Nil(t, p.Data)
	})

	t.Run("not found is nil", func(t *testing.T) {
		p, err := decodeProfile(id, suiclient.ObjectResponse{Error: &suiclient.ObjectError{Code: "notExists", ObjectID: id}})
		assert.NoError(t, err)
		assert.Nil(t, p)

		p, err = decodeProfile(id, suiclient.ObjectResponse{})
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("missing optional fields", func(t *testing.T) {
		obj := profileObject(id, addressOwned, "Alice", "")
		delete(obj.Data.Content.Fields, "image_url")
		obj.Data.Content.Fields["description"] = json.RawMessage(`null`)
		delete(obj.Data.Content.Fields, "data")
		p, err := decodeProfile(id, obj)
		require.NoError(t, err)
		assert.Empty(t, p.ImageURL)
		assert.Empty(t, p.Description)
		assert.Nil(t, p.Data)
	})

	rejections := map[string]func(obj *suiclient.ObjectResponse){
		"missing content": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content = nil
		},
		"package content": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content.DataType = suiclient.DataTypePackage
		},
		"wrong type": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content.Type = "0x2::kiosk::Kiosk"
		},
		"lookalike type": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content.Type = "0x9::profile::ProfileCap"
		},
		"missing owner": func(obj *suiclient.ObjectResponse) {
			obj.Data.Owner = nil
		},
		"shared": func(obj *suiclient.ObjectResponse) {
			obj.Data.Owner = &suiclient.Owner{Kind: suiclient.OwnerShared, InitialSharedVersion: 1}
		},
		"immutable": func(obj *suiclient.ObjectResponse) {
			obj.Data.Owner = &suiclient.Owner{Kind: suiclient.OwnerImmutable}
		},
		"unknown owner": func(obj *suiclient.ObjectResponse) {
			obj.Data.Owner = &suiclient.Owner{Kind: suiclient.OwnerUnknown}
		},
		"invalid data json": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content.Fields["data"] = json.RawMessage(`"{not json"`)
		},
		"non string name": func(obj *suiclient.ObjectResponse) {
			obj.Data.Content.Fields["name"] = json.RawMessage(`42`)
		},
		"mismatched id": func(obj *suiclient.ObjectResponse) {
			obj.Data.ObjectID = addr(t, 0x2b)
		},
	}
	for name, mutate := range rejections {
		t.Run(name, func(t *testing.T) {
			obj := profileObject(id, addressOwned, "Alice", "")
			mutate(&obj)
			p, err := decodeProfile(id, obj)
			assert.Nil(t, p)
			var decodingErr *DecodingError
			require.True(t, errors.As(err, &decodingErr), "got %v", err)
			assert.Equal(t, id, decodingErr.ObjectID)
			assert.NotEmpty(t, decodingErr.Reason)
		})
	}
}
