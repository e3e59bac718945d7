package rpcserver

import (
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/common"
)

func TestMakeResultCacheKeyDeterministic(t *testing.T) {
	files := []*fileInClientDir{
		{clientFileName: "a.h", fileSize: 10, fileSHA256: common.SHA256{B0_7: 1}},
		{clientFileName: "b.h", fileSize: 20, fileSHA256: common.SHA256{B8_15: 2}},
	}

	key1 := MakeResultCacheKey("add", "/src/main.cc", files)
	key2 := MakeResultCacheKey("add", "/other/path/main.cc", files)

	if key1 != key2 {
		t.Errorf("want the same key for the same basename regardless of directory, got %+v vs %+v", key1, key2)
	}
	if key1.IsEmpty() {
		t.Error("want a non-empty key")
	}
}

func TestMakeResultCacheKeyVariesWithInputs(t *testing.T) {
	files := []*fileInClientDir{
		{clientFileName: "a.h", fileSize: 10, fileSHA256: common.SHA256{B0_7: 1}},
	}

	base := MakeResultCacheKey("add", "/src/main.cc", files)

	if got := MakeResultCacheKey("remove", "/src/main.cc", files); got == base {
		t.Error("want a different key for a different output format")
	}
	if got := MakeResultCacheKey("add", "/src/other.cc", files); got == base {
		t.Error("want a different key for a different source file")
	}

	changedSize := []*fileInClientDir{
		{clientFileName: "a.h", fileSize: 99, fileSHA256: common.SHA256{B0_7: 1}},
	}
	if got := MakeResultCacheKey("add", "/src/main.cc", changedSize); got == base {
		t.Error("want a different key when a dependency's size changes")
	}

	changedHash := []*fileInClientDir{
		{clientFileName: "a.h", fileSize: 10, fileSHA256: common.SHA256{B0_7: 2}},
	}
	if got := MakeResultCacheKey("add", "/src/main.cc", changedHash); got == base {
		t.Error("want a different key when a dependency's content hash changes")
	}
}

func TestMakeResultCacheKeyOrderIndependent(t *testing.T) {
	a := &fileInClientDir{clientFileName: "a.h", fileSize: 10, fileSHA256: common.SHA256{B0_7: 1}}
	b := &fileInClientDir{clientFileName: "b.h", fileSize: 20, fileSHA256: common.SHA256{B8_15: 2}}

	forward := MakeResultCacheKey("add", "/src/main.cc", []*fileInClientDir{a, b})
	backward := MakeResultCacheKey("add", "/src/main.cc", []*fileInClientDir{b, a})

	if forward != backward {
		t.Errorf("want the XOR-based key to be order-independent, got %+v vs %+v", forward, backward)
	}
}
