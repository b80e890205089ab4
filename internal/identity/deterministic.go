package identity

import (
	"sort"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID identifies one command document by its ID and content.
func DocumentUUID(commandID, checksum string) uuid.UUID {
	return UUID("pbmeta:document:" + strings.TrimSpace(commandID) + ":" + strings.TrimSpace(checksum))
}

// CorpusFingerprint derives a UUID from the command ID and checksum of every
// document. Input order does not matter; an empty corpus has a fixed
// fingerprint.
func CorpusFingerprint(checksums map[string]string) uuid.UUID {
	entries := make([]string, 0, len(checksums))
	for id, sum := range checksums {
		entries = append(entries, strings.TrimSpace(id)+":"+strings.TrimSpace(sum))
	}
	sort.Strings(entries)
	return UUID("pbmeta:corpus:" + strings.Join(entries, ","))
}
