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
	"net"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/xgfone/bt/bencode"
)

// HostAddr is a node address of the torrent, which is encoded
// as the list [host, port] in the "nodes" of the metainfo (BEP 5).
type HostAddr struct {
	Host string
	Port uint16
}

var (
	_ bencode.Marshaler   = HostAddr{}
	_ bencode.Unmarshaler = new(HostAddr)
)

// ParseHostAddr parses the address "host:port".
func ParseHostAddr(s string) (HostAddr, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return HostAddr{}, errors.Wrapf(err, "invalid host address '%s'", s)
	}

	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return HostAddr{}, errors.Wrapf(err, "invalid port of the host address '%s'", s)
	}

	return HostAddr{Host: host, Port: uint16(p)}, nil
}

func (a HostAddr) String() string {
	if a.Port == 0 {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

// MarshalBencode implements the interface bencode.Marshaler.
func (a HostAddr) MarshalBencode() ([]byte, error) {
	return bencode.Encode([]interface{}{a.Host, a.Port})
}

// UnmarshalBencode implements the interface bencode.Unmarshaler.
//
// Besides the list [host, port], the string "host:port" is also accepted.
func (a *HostAddr) UnmarshalBencode(b []byte) error {
	v, err := bencode.Decode(b)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case bencode.ByteString:
		*a, err = ParseHostAddr(string(v))
		return err

	case bencode.List:
		if len(v) != 2 {
			return errors.Newf("the host address list has %d elements, not 2", len(v))
		}

		host, ok := v[0].(bencode.ByteString)
		if !ok {
			return errors.New("the host of the host address is not a string")
		}

		port, ok := v[1].(bencode.Integer)
		if !ok {
			return errors.New("the port of the host address is not an integer")
		}

		p, ok := port.Uint64()
		if !ok || p > 65535 {
			return errors.Newf("invalid port %s of the host address", port)
		}

		*a = HostAddr{Host: string(host), Port: uint16(p)}
		return nil

	default:
		return errors.New("the host address is neither a list nor a string")
	}
}
