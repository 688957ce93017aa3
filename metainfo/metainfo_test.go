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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xgfone/bt/bencode"
)

func TestMetaInfo(t *testing.T) {
	info := Info{Name: "a.txt", PieceLength: 4, Length: 3, Pieces: Hashes{NewHashFromBytes([]byte("abc"))}}

	mi := MetaInfo{
		Announce:     "http://tracker/announce",
		AnnounceList: AnnounceList{{"http://tracker/announce", "udp://tracker:80"}, {"", "udp://tracker:80"}},
		Nodes:        []HostAddr{{Host: "1.2.3.4", Port: 6881}},
		URLList:      URLList{"http://seed/"},
		CreationDate: 1600000000,
		Comment:      "test",
	}
	if err := mi.SetInfo(info); err != nil {
		t.Fatal(err)
	}

	buf := bytes.NewBuffer(nil)
	if err := mi.Write(buf); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "a.torrent")
	writeFile(t, path, buf.String())

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	} else if !loaded.Equal(mi) {
		t.Errorf("expect %+v, but got %+v", mi, loaded)
	}

	if loaded.InfoHash() != NewHashFromBytes(mi.InfoBytes) {
		t.Errorf("unexpected info hash %s", loaded.InfoHash())
	}

	got, err := loaded.Info()
	if err != nil {
		t.Fatal(err)
	} else if got.Name != "a.txt" || got.TotalLength() != 3 {
		t.Errorf("unexpected info %+v", got)
	}

	announces := loaded.Announces().Unique()
	if len(announces) != 2 || announces[0] != "http://tracker/announce" || announces[1] != "udp://tracker:80" {
		t.Errorf("unexpected announces %v", announces)
	}

	if u := loaded.URLList.FullURL(0, "a.txt"); u != "http://seed/a.txt" {
		t.Errorf("expect the url '%s', but got '%s'", "http://seed/a.txt", u)
	}

	m := loaded.Magnet("")
	expect := "magnet:?xt=urn:btih:" + mi.InfoHash().HexString() + "&dn=a.txt"
	if s := m.String(); !strings.HasPrefix(s, expect) {
		t.Errorf("expect the prefix '%s', but got '%s'", expect, s)
	}
}

func TestLoadError(t *testing.T) {
	for _, input := range []string{
		"",
		"d8:announce1:ae",
		"d4:infod4:name1:ae8:announce1:ae",
		"d4:infoi1e8:url-listi1ee",
	} {
		if _, err := LoadBytes([]byte(input)); err == nil {
			t.Errorf("%q: expect an error, but got nil", input)
		}
	}
}

func TestURLList(t *testing.T) {
	var us URLList
	if err := bencode.DecodeString("8:http://a", &us); err != nil {
		t.Fatal(err)
	} else if len(us) != 1 || us[0] != "http://a" {
		t.Errorf("unexpected url list %v", us)
	}

	if err := bencode.DecodeString("l8:http://a8:http://be", &us); err != nil {
		t.Fatal(err)
	} else if len(us) != 2 || us[1] != "http://b" {
		t.Errorf("unexpected url list %v", us)
	}

	if s, _ := bencode.EncodeString(us); s != "l8:http://a8:http://be" {
		t.Errorf("unexpected encoded url list '%s'", s)
	}

	if err := bencode.DecodeString("li1ee", &us); err == nil {
		t.Error("expect an error, but got nil")
	}
}
