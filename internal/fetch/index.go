// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/patchctl/patchctl/internal/log"
)

// ResolveIndex picks the archive URL (and digest, when published) for a
// requested version out of a JSON release index shaped like:
//
//	{
//	  "name": "zlib",
//	  "releases": [
//	    {"version": "1.3.1", "url": "https://...", "sha256": "..."},
//	    ...
//	  ]
//	}
//
// version "latest" (or empty) selects the first release in the document,
// trusting the index's own ordering.
func ResolveIndex(index []byte, version string) (Source, error) {
	if !gjson.ValidBytes(index) {
		return Source{}, fmt.Errorf("release index is not valid JSON")
	}

	doc := gjson.ParseBytes(index)
	if !doc.Get("releases").IsArray() {
		return Source{}, fmt.Errorf("release index has no releases array")
	}

	var release gjson.Result
	if version == "" || version == "latest" {
		release = doc.Get("releases.0")
	} else {
		release = doc.Get(fmt.Sprintf(`releases.#(version=="%s")`, version))
	}
	if !release.Exists() {
		return Source{}, fmt.Errorf("version %q not present in release index", version)
	}

	url := release.Get("url").String()
	if url == "" {
		return Source{}, fmt.Errorf("release %s has no url", release.Get("version").String())
	}

	src := Source{URL: url, SHA256: release.Get("sha256").String()}
	log.Debugf("index resolved: version=%s url=%s", release.Get("version").String(), src.URL)
	return src, nil
}
