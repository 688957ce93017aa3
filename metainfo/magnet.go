// Copyright 2020 xgfone
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metainfo

import (
	"encoding/base32"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

const btihPrefix = "urn:btih:"

// Magnet is a magnet link of the torrent (BEP 9).
type Magnet struct {
	InfoHash    Hash       // "xt"
	DisplayName string     // "dn"
	Trackers    []string   // "tr"
	Params      url.Values // the other parameters, such as "x.pe", "ws", etc.
}

// Peers parses and returns the peer addresses of "x.pe".
func (m Magnet) Peers() ([]HostAddr, error) {
	vs := m.Params["x.pe"]
	peers := make([]HostAddr, 0, len(vs))
	for _, v := range vs {
		if v == "" {
			continue
		}

		addr, err := ParseHostAddr(v)
		if err != nil {
			return nil, err
		}
		peers = append(peers, addr)
	}
	return peers, nil
}

// String returns the magnet uri, which starts with "magnet:?xt=urn:btih:".
func (m Magnet) String() string {
	vs := make(url.Values, len(m.Params)+2)
	for k, v := range m.Params {
		vs[k] = append([]string(nil), v...)
	}
	if m.DisplayName != "" {
		vs.Set("dn", m.DisplayName)
	}
	for _, tr := range m.Trackers {
		vs.Add("tr", tr)
	}

	// Some clients require the unescaped xt at the beginning.
	query := "xt=" + btihPrefix + m.InfoHash.HexString()
	if len(vs) > 0 {
		query += "&" + vs.Encode()
	}

	return (&url.URL{Scheme: "magnet", RawQuery: query}).String()
}

// ParseMagnetURI parses the magnet uri.
func ParseMagnetURI(uri string) (m Magnet, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return m, errors.Wrap(err, "invalid magnet uri")
	} else if u.Scheme != "magnet" {
		return m, errors.Newf("unexpected magnet scheme '%s'", u.Scheme)
	}

	q := u.Query()
	xt := q.Get("xt")
	if m.InfoHash, err = parseBTIH(xt); err != nil {
		return m, errors.Wrapf(err, "invalid magnet xt '%s'", xt)
	}
	shift(q, "xt")

	m.DisplayName = q.Get("dn")
	shift(q, "dn")

	m.Trackers = q["tr"]
	delete(q, "tr")

	if len(q) > 0 {
		m.Params = q
	}
	return
}

func parseBTIH(xt string) (h Hash, err error) {
	if !strings.HasPrefix(xt, btihPrefix) {
		return h, errors.Newf("missing the prefix '%s'", btihPrefix)
	}

	s := xt[len(btihPrefix):]
	switch len(s) {
	case 2 * HashSize:
		_, err = hex.Decode(h[:], []byte(s))
	case 32:
		_, err = base32.StdEncoding.Decode(h[:], []byte(strings.ToUpper(s)))
	default:
		err = errors.Newf("unknown info hash encoding with the length %d", len(s))
	}
	return
}

// shift removes the first value of the key.
func shift(vs url.Values, key string) {
	if len(vs[key]) > 1 {
		vs[key] = vs[key][1:]
	} else {
		delete(vs, key)
	}
}
