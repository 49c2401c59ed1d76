// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package floats

import (
	"github.com/chewxy/math32"
)

// Dot two vectors.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// Norm returns the L2 norm of a vector.
func Norm(a []float32) float32 {
	return math32.Sqrt(Dot(a, a))
}

// MulConst multiplies a vector by a constant in place.
func MulConst(dst []float32, c float32) {
	for i := range dst {
		dst[i] *= c
	}
}

// Widen copies a float32 vector into a float64 one.
func Widen(dst []float64, src []float32) {
	if len(dst) != len(src) {
		panic("floats: slice lengths do not match")
	}
	for i := range src {
		dst[i] = float64(src[i])
	}
}

// Narrow copies a float64 vector into a float32 one.
func Narrow(dst []float32, src []float64) {
	if len(dst) != len(src) {
		panic("floats: slice lengths do not match")
	}
	for i := range src {
		dst[i] = float32(src[i])
	}
}
