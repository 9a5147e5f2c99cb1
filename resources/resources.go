// Package resources wraps the REST surface of the water resources backend:
// one typed collection per business entity plus the entity specific helpers.
// Every call goes through an apiclient.Client and so shares its session,
// refresh handling and error classification.
package resources

import (
	"time"

	"github.com/jrsteele09/go-waterres-client/apiclient"
)

type Client struct {
	api *apiclient.Client

	Departments  *Departments
	Users        *Users
	Roles        *Roles
	Permissions  *Permissions
	Positions    *Positions
	Regions      *Regions
	Personnel    *PersonnelDirectory
	Facilities   *Facilities
	Inspections  *Inspections
	Warnings     *Warnings
	Dictionaries *Dictionaries
	Map          *MapView
	Monitoring   *Monitoring

	// DictCache serves dictionary labels.
	DictCache *DictionaryCache
}

type Option func(*config)

type config struct {
	dictTTL time.Duration
}

// WithDictionaryTTL sets how long dictionary entries are cached.
func WithDictionaryTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.dictTTL = ttl
	}
}

func New(api *apiclient.Client, options ...Option) *Client {
	cfg := config{dictTTL: DefaultDictionaryTTL}
	for _, option := range options {
		option(&cfg)
	}

	dicts := newDictionaries(api)
	return &Client{
		api:          api,
		Departments:  newDepartments(api),
		Users:        newUsers(api),
		Roles:        newRoles(api),
		Permissions:  newPermissions(api),
		Positions:    newPositions(api),
		Regions:      newRegions(api),
		Personnel:    newPersonnelDirectory(api),
		Facilities:   newFacilities(api),
		Inspections:  newInspections(api),
		Warnings:     newWarnings(api),
		Dictionaries: dicts,
		Map:          &MapView{client: api},
		Monitoring:   newMonitoring(api),
		DictCache:    NewDictionaryCache(dicts, cfg.dictTTL),
	}
}

// API returns the underlying request pipeline.
func (c *Client) API() *apiclient.Client {
	return c.api
}
