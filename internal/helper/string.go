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

// Package helper provides the small helpers shared by the packages.
package helper

// ContainsString reports whether s is in ss.
func ContainsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// UniqueStrings returns the non-empty strings in ss without the duplicates,
// which keeps the order of the first occurrences.
func UniqueStrings(ss []string) []string {
	us := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" && !ContainsString(us, s) {
			us = append(us, s)
		}
	}
	return us
}
