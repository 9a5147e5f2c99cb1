package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

const (
	DictTypesPath = "/system/dict/types"
	DictDataPath  = "/system/dict/data"
)

// Flag is an enabled marker the backend sends as "1"/"0", 1/0 or true/false.
// It is normalized to "1" or "0" when boolean.
type Flag string

const (
	FlagOn  Flag = "1"
	FlagOff Flag = "0"
)

func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
	case bytes.Equal(trimmed, []byte("true")):
		*f = FlagOn
	case bytes.Equal(trimmed, []byte("false")):
		*f = FlagOff
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = Flag(s)
	default:
		*f = Flag(trimmed)
	}
	return nil
}

func (f Flag) On() bool {
	return f == FlagOn
}

type DictType struct {
	ID          int64     `json:"id"`
	TypeCode    string    `json:"typeCode"`
	TypeName    string    `json:"typeName"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    Flag      `json:"isActive"`
	DataCount   int       `json:"dataCount"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

type DictTypeInput struct {
	TypeCode    string `json:"typeCode" validate:"required,max=50"`
	TypeName    string `json:"typeName" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	SortOrder   int    `json:"sortOrder" validate:"gte=0"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type DictData struct {
	ID          int64     `json:"id"`
	TypeID      int64     `json:"typeId"`
	TypeCode    string    `json:"typeCode,omitempty"`
	DataLabel   string    `json:"dataLabel"`
	DataValue   string    `json:"dataValue"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	IsActive    Flag      `json:"isActive"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

type DictDataInput struct {
	TypeID      int64  `json:"typeId" validate:"required,gt=0"`
	DataLabel   string `json:"dataLabel" validate:"required,max=100"`
	DataValue   string `json:"dataValue" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	SortOrder   int    `json:"sortOrder" validate:"gte=0"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type Dictionaries struct {
	client *apiclient.Client

	Types Collection[DictType, DictTypeInput]
	Data  Collection[DictData, DictDataInput]
}

func newDictionaries(client *apiclient.Client) *Dictionaries {
	return &Dictionaries{
		client: client,
		Types:  newCollection[DictType, DictTypeInput](client, DictTypesPath),
		Data:   newCollection[DictData, DictDataInput](client, DictDataPath),
	}
}

func (d *Dictionaries) TypeByCode(ctx context.Context, typeCode string) (*DictType, error) {
	return sub[*DictType](ctx, d.client, apiclient.Get(DictTypesPath+"/code/"+url.PathEscape(typeCode), nil))
}

// TypeCodeExists reports whether typeCode is taken by a type other than
// excludeID.
func (d *Dictionaries) TypeCodeExists(ctx context.Context, typeCode string, excludeID int64) (bool, error) {
	q := url.Values{"typeCode": {typeCode}}
	optionalID(q, "excludeId", excludeID)
	res, err := sub[existence](ctx, d.client, apiclient.Get(DictTypesPath+"/check-code", q))
	return res.Exists, err
}

// DataByTypeCode returns every entry of a dictionary, inactive ones included.
func (d *Dictionaries) DataByTypeCode(ctx context.Context, typeCode string) ([]DictData, error) {
	return sub[[]DictData](ctx, d.client, apiclient.Get(DictDataPath+"/type/"+url.PathEscape(typeCode), nil))
}

func (d *Dictionaries) DataByTypeID(ctx context.Context, typeID int64) ([]DictData, error) {
	return sub[[]DictData](ctx, d.client, apiclient.Get(itemPath(DictDataPath+"/type-id", typeID), nil))
}
