// Package fetch retrieves run outputs of a campaign from the machine that
// executed it into local storage.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

//go:generate go tool mockgen -source=fetch.go -destination=fetchmock/fetcher.go -package=fetchmock

// LocalMachine names the machine that needs no fetch.
const LocalMachine = "localhost"

// Kinds of machine a campaign can be fetched from.
const (
	KindLocal  = "local"
	KindAzBlob = "azblob"
)

// Fetcher populates destDir with the run directories of campaignID held on machine.
type Fetcher interface {
	Fetch(ctx context.Context, campaignID, machine, destDir string) error
}

// Machine describes where a machine keeps campaign outputs.
type Machine struct {
	Kind string `mapstructure:"kind"`

	// AccountURL and Container locate an Azure Storage container (azblob).
	AccountURL string `mapstructure:"account_url"`
	Container  string `mapstructure:"container"`

	// Source is the directory holding one subdirectory per campaign (local).
	Source string `mapstructure:"source"`
}

func (m Machine) validate(name string) error {
	switch m.Kind {
	case KindLocal:
		if m.Source == "" {
			return fmt.Errorf("machine %q: local machines need a source directory", name)
		}
	case KindAzBlob:
		if m.AccountURL == "" || m.Container == "" {
			return fmt.Errorf("machine %q: azblob machines need account_url and container", name)
		}
	default:
		return fmt.Errorf("machine %q: unknown kind %q (want %s or %s)", name, m.Kind, KindLocal, KindAzBlob)
	}
	return nil
}

// Registry resolves machine names to their transport and fetches from them.
type Registry struct {
	machines      map[string]Machine
	newBlobClient func(accountURL string) (blobClient, error)
}

// Option configures a Registry.
type Option func(*Registry)

// withBlobClientFactory replaces the Azure client constructor.
func withBlobClientFactory(fn func(accountURL string) (blobClient, error)) Option {
	return func(r *Registry) { r.newBlobClient = fn }
}

// New decodes the machines section of the project config into a Registry.
func New(machines map[string]map[string]any, opts ...Option) (*Registry, error) {
	r := &Registry{
		machines:      make(map[string]Machine, len(machines)),
		newBlobClient: newAzureBlobClient,
	}
	for name, raw := range machines {
		var m Machine
		if err := mapstructure.Decode(raw, &m); err != nil {
			return nil, fmt.Errorf("machine %q: %w", name, err)
		}
		if err := m.validate(name); err != nil {
			return nil, err
		}
		r.machines[name] = m
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Machines returns the configured machine names, sorted.
func (r *Registry) Machines() []string {
	names := make([]string, 0, len(r.machines))
	for name := range r.machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetch copies the outputs of campaignID from machine into destDir. An empty
// machine name or LocalMachine is a no-op. Failures are not retried.
func (r *Registry) Fetch(ctx context.Context, campaignID, machine, destDir string) error {
	if machine == "" || machine == LocalMachine {
		slog.Debug("skipping fetch for local campaign", "campaign", campaignID)
		return nil
	}

	m, ok := r.machines[machine]
	if !ok {
		return fmt.Errorf("unknown machine %q", machine)
	}

	slog.Info("fetching run outputs", "campaign", campaignID, "machine", machine, "kind", m.Kind, "dest", destDir)

	switch m.Kind {
	case KindLocal:
		return copyTree(ctx, m.Source, campaignID, destDir)
	default:
		client, err := r.newBlobClient(m.AccountURL)
		if err != nil {
			return err
		}
		return downloadBlobs(ctx, client, m.Container, campaignID, destDir)
	}
}
