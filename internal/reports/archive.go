package reports

import (
	"bytes"
	"context"
	"path"

	cryptoutil "p9ify/internal/platform/crypto"
	"p9ify/internal/platform/storage"
)

// Archive keeps a copy of every rendered document, sealed when an
// encryption key is configured.
type Archive struct {
	store  storage.Store
	crypto *cryptoutil.Service
}

func NewArchive(store storage.Store, crypto *cryptoutil.Service) *Archive {
	if store == nil {
		store = storage.Discard{}
	}
	return &Archive{store: store, crypto: crypto}
}

func (a *Archive) Save(ctx context.Context, dir, name, contentType string, data []byte) (*storage.FileInfo, error) {
	target := path.Join(dir, name)
	if a.crypto.Configured() {
		sealed, err := a.crypto.Encrypt(data)
		if err != nil {
			return nil, err
		}
		return a.store.Save(ctx, target+".enc", bytes.NewReader(sealed), "application/octet-stream")
	}
	return a.store.Save(ctx, target, bytes.NewReader(data), contentType)
}
