package includepicker

// mapEntry is one (private-header-or-symbol, quoted-or-private) pair, as
// read from original_source/iwyu_include_picker.cc's static tables: the
// value carries its own <> or "" quoting when it names a public header, and
// is bare when it names another private key to keep expanding through.

type mapEntry struct {
	key   string
	value string
}

// cppStdEntries is a representative slice of MakeCppIncludeMap's table:
// libstdc++ private implementation headers re-exported by public ones.
var cppStdEntries = []mapEntry{
	{"bits/algorithmfwd.h", "<algorithm>"},
	{"bits/allocator.h", "<memory>"},
	{"bits/basic_string.h", "<string>"},
	{"bits/basic_string.tcc", "<string>"},
	{"bits/char_traits.h", "<string>"},
	{"bits/deque.tcc", "<deque>"},
	{"bits/functional_hash.h", "<unordered_map>"},
	{"bits/hashtable.h", "<unordered_map>"},
	{"bits/hashtable.h", "<unordered_set>"},
	{"bits/ios_base.h", "<iostream>"},
	{"bits/ios_base.h", "<ios>"},
	{"bits/locale_classes.h", "<locale>"},
	{"bits/move.h", "<algorithm>"},
	{"bits/stl_algo.h", "<algorithm>"},
	{"bits/stl_algobase.h", "<algorithm>"},
	{"bits/stl_bvector.h", "<vector>"},
	{"bits/stl_construct.h", "<memory>"},
	{"bits/stl_deque.h", "<deque>"},
	{"bits/stl_function.h", "<functional>"},
	{"bits/stl_iterator.h", "<iterator>"},
	{"bits/stl_list.h", "<list>"},
	{"bits/stl_map.h", "<map>"},
	{"bits/stl_multimap.h", "<map>"},
	{"bits/stl_multiset.h", "<set>"},
	{"bits/stl_pair.h", "<utility>"},
	{"bits/stl_queue.h", "<queue>"},
	{"bits/stl_set.h", "<set>"},
	{"bits/stl_stack.h", "<stack>"},
	{"bits/stl_tree.h", "<map>"},
	{"bits/stl_tree.h", "<set>"},
	{"bits/stl_uninitialized.h", "<memory>"},
	{"bits/stl_vector.h", "<vector>"},
	{"bits/stl_vector.h", "bits/stl_bvector.h"}, // private -> private hop
	{"bits/stream_iterator.h", "<iterator>"},
	{"bits/stringfwd.h", "<string>"},
	{"bits/vector.tcc", "<vector>"},
	{"ext/vstring.h", "<string>"},
	{"ext/vstring_fwd.h", "<string>"},
	// self-mappings so an already-public header is never flagged as private
	{"ios", "<ios>"},
	{"istream", "<istream>"},
	{"ostream", "<ostream>"},
	{"streambuf", "<streambuf>"},
}

// cLibraryEntries is a representative slice of MakeCIncludeMap's table.
var cLibraryEntries = []mapEntry{
	{"bits/byteswap.h", "<byteswap.h>"},
	{"bits/confname.h", "<unistd.h>"},
	{"bits/dirent.h", "<dirent.h>"},
	{"bits/dlfcn.h", "<dlfcn.h>"},
	{"bits/endian.h", "<endian.h>"},
	{"bits/sigset.h", "<signal.h>"},
	{"bits/stat.h", "<sys/stat.h>"},
	{"bits/stdio.h", "<stdio.h>"},
	{"bits/stdio2.h", "<stdio.h>"},
	{"bits/stdlib.h", "<stdlib.h>"},
	{"bits/stdlib-float.h", "<stdlib.h>"},
	{"bits/string.h", "<string.h>"},
	{"bits/time.h", "<time.h>"},
	{"bits/types.h", "<sys/types.h>"},
	{"bits/waitflags.h", "<sys/wait.h>"},
	{"bits/waitstatus.h", "<sys/wait.h>"},
}

// thirdPartyPrefixEntries maps a path *prefix* (matched by starts-with, not
// exact key) to the public header that re-exports everything beneath it.
// Grounded on iwyu_include_picker.cc's GetThirdPartyPrefixes-driven includes
// (e.g. everything under a vendored protobuf checkout resolves to the
// library's umbrella header).
var thirdPartyPrefixEntries = []mapEntry{
	{"third_party/abseil-cpp/absl/strings/internal/", "<absl/strings/str_cat.h>"},
	{"third_party/protobuf/src/google/protobuf/internal/", "<google/protobuf/message.h>"},
	{"third_party/googletest/googletest/include/gtest/internal/", "<gtest/gtest.h>"},
}

// symbolEntries maps a fully-qualified symbol name directly to its public
// header, for symbols whose path-based mapping would be ambiguous (e.g.
// template specializations living in an internal header but reachable from
// several public ones).
var symbolEntries = []mapEntry{
	{"std::swap", "<utility>"},
	{"std::move", "<utility>"},
	{"std::make_unique", "<memory>"},
	{"std::make_shared", "<memory>"},
}
