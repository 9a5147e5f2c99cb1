package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-waterres-client/apiclient"
	"github.com/pkg/errors"
)

// ListQuery is the paging and filter set accepted by list endpoints. Zero
// values are left out of the query string.
type ListQuery struct {
	Page    int
	Size    int
	Keyword string
	Sort    string
	Filters map[string]string
}

func (q ListQuery) Values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	if q.Keyword != "" {
		values.Set("keyword", q.Keyword)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	for k, v := range q.Filters {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values
}

// Page is one page of a list endpoint. The backend names the item list
// either "items" or "records"; a bare array is accepted as a single page.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Size        int   `json:"size"`
	TotalPages  int64 `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Items: items, Total: int64(len(items)), Page: 1, Size: len(items), TotalPages: 1}
		return nil
	}

	var raw struct {
		pageFields[T]
		Records []T   `json:"records"`
		Current int   `json:"current"`
		Pages   int64 `json:"pages"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	*p = Page[T](raw.pageFields)
	if p.Items == nil {
		p.Items = raw.Records
	}
	if p.Page == 0 {
		p.Page = raw.Current
	}
	if p.TotalPages == 0 {
		p.TotalPages = raw.Pages
	}
	return nil
}

// pageFields carries the Page fields without its UnmarshalJSON method.
type pageFields[T any] Page[T]

// Availability is the answer of the name and code uniqueness checks.
type Availability struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

type existence struct {
	Exists bool `json:"exists"`
}

type idList struct {
	IDs []int64 `json:"ids"`
}

// Collection is a REST resource rooted at one path: T is the entity read back
// and W is the create/update payload.
type Collection[T, W any] struct {
	client *apiclient.Client
	path   string
}

func newCollection[T, W any](client *apiclient.Client, path string) Collection[T, W] {
	return Collection[T, W]{client: client, path: path}
}

func (c Collection[T, W]) Path() string {
	return c.path
}

func (c Collection[T, W]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	page, err := apiclient.Call[*Page[T]](ctx, c.client, apiclient.Get(c.path, q.Values()))
	if err != nil {
		return nil, errors.Wrapf(err, "[Collection.List] %s", c.path)
	}
	if page == nil {
		page = &Page[T]{}
	}
	return page, nil
}

func (c Collection[T, W]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := apiclient.Call[*T](ctx, c.client, apiclient.Get(itemPath(c.path, id), nil))
	if err != nil {
		return nil, errors.Wrapf(err, "[Collection.Get] %s", c.path)
	}
	return item, nil
}

// Create validates in and posts it. The returned entity is nil when the
// server answers with no data.
func (c Collection[T, W]) Create(ctx context.Context, in W) (*T, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	item, err := apiclient.Call[*T](ctx, c.client, apiclient.Post(c.path, in))
	if err != nil {
		return nil, errors.Wrapf(err, "[Collection.Create] %s", c.path)
	}
	return item, nil
}

func (c Collection[T, W]) Update(ctx context.Context, id int64, in W) (*T, error) {
	if err := validatePayload(in); err != nil {
		return nil, err
	}
	item, err := apiclient.Call[*T](ctx, c.client, apiclient.Put(itemPath(c.path, id), in))
	if err != nil {
		return nil, errors.Wrapf(err, "[Collection.Update] %s", c.path)
	}
	return item, nil
}

func (c Collection[T, W]) Delete(ctx context.Context, id int64) error {
	err := apiclient.Exec(ctx, c.client, apiclient.Delete(itemPath(c.path, id), nil))
	return errors.Wrapf(err, "[Collection.Delete] %s", c.path)
}

// BatchDelete removes several entities in one call. An empty id list is a
// no-op and makes no request.
func (c Collection[T, W]) BatchDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := apiclient.Exec(ctx, c.client, apiclient.Delete(c.path+"/batch", idList{IDs: ids}))
	return errors.Wrapf(err, "[Collection.BatchDelete] %s", c.path)
}

// sub calls a path below the collection root and decodes the data into R.
func sub[R any](ctx context.Context, client *apiclient.Client, req *apiclient.Request) (R, error) {
	out, err := apiclient.Call[R](ctx, client, req)
	if err != nil {
		return out, errors.Wrapf(err, "[%s %s]", req.Method, req.Path)
	}
	return out, nil
}

// exec calls req and discards the response data.
func exec(ctx context.Context, client *apiclient.Client, req *apiclient.Request) error {
	return errors.Wrapf(apiclient.Exec(ctx, client, req), "[%s %s]", req.Method, req.Path)
}

func itemPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func optionalID(values url.Values, key string, id int64) {
	if id > 0 {
		values.Set(key, strconv.FormatInt(id, 10))
	}
}
