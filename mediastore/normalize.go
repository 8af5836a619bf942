package mediastore

import (
	"net/url"
	"strings"

	"github.com/promptvault/prompt-media-repo/util"
)

// Normalize maps every URL variant of the same stored image to one canonical
// string. Blob store URLs carry volatile query parameters (access tokens,
// alt=media and friends), so for recognized hosts the query is dropped
// entirely, the path is percent-decoded, and any trailing slash removed.
// URLs for unrecognized hosts are only whitespace-trimmed.
func (s *Store) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || !s.isBlobHost(u.Host) {
		return trimmed
	}

	p, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		p = u.Path
	}

	norm := u.Scheme + "://" + u.Host + p
	return strings.TrimSuffix(norm, "/")
}

// RecordID derives the record id for an (owner, url) pair. Pure function: the
// same logical input always reaches the same record.
func (s *Store) RecordID(ownerId string, rawUrl string) string {
	return util.GetSha256OfString(ownerId + "-" + s.Normalize(rawUrl))
}

func (s *Store) isBlobHost(host string) bool {
	if s.blobHosts[host] {
		return true
	}
	// config may list hosts without ports
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		return s.blobHosts[host[:idx]]
	}
	return false
}
