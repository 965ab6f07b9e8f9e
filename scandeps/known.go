// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import "strings"

// standard C, C++, POSIX and platform SDK headers.
var knownHeaders = []string{
	// C
	"assert.h", "complex.h", "ctype.h", "errno.h", "fenv.h", "float.h",
	"inttypes.h", "iso646.h", "limits.h", "locale.h", "math.h", "setjmp.h",
	"signal.h", "stdalign.h", "stdarg.h", "stdatomic.h", "stdbool.h",
	"stddef.h", "stdint.h", "stdio.h", "stdlib.h", "stdnoreturn.h",
	"string.h", "tgmath.h", "threads.h", "time.h", "uchar.h", "wchar.h",
	"wctype.h",
	// C++
	"algorithm", "any", "array", "atomic", "barrier", "bit", "bitset",
	"cassert", "cctype", "cerrno", "cfenv", "cfloat", "charconv", "chrono",
	"cinttypes", "climits", "clocale", "cmath", "codecvt", "compare",
	"complex", "concepts", "condition_variable", "coroutine", "csetjmp",
	"csignal", "cstdarg", "cstddef", "cstdint", "cstdio", "cstdlib",
	"cstring", "ctime", "cuchar", "cwchar", "cwctype", "deque", "exception",
	"execution", "expected", "filesystem", "format", "forward_list",
	"fstream", "functional", "future", "initializer_list", "iomanip", "ios",
	"iosfwd", "iostream", "istream", "iterator", "latch", "limits", "list",
	"locale", "map", "memory", "memory_resource", "mutex", "new", "numbers",
	"numeric", "optional", "ostream", "print", "queue", "random", "ranges",
	"ratio", "regex", "scoped_allocator", "semaphore", "set",
	"shared_mutex", "source_location", "span", "sstream", "stack",
	"stdexcept", "stop_token", "streambuf", "string", "string_view",
	"strstream", "syncstream", "system_error", "thread", "tuple",
	"type_traits", "typeindex", "typeinfo", "unordered_map",
	"unordered_set", "utility", "valarray", "variant", "vector", "version",
	// POSIX
	"aio.h", "dirent.h", "dlfcn.h", "fcntl.h", "fnmatch.h", "glob.h",
	"grp.h", "iconv.h", "langinfo.h", "libgen.h", "netdb.h", "poll.h",
	"pthread.h", "pwd.h", "regex.h", "sched.h", "search.h", "semaphore.h",
	"spawn.h", "strings.h", "syslog.h", "termios.h", "unistd.h", "utime.h",
	"wordexp.h", "execinfo.h", "malloc.h", "alloca.h", "getopt.h",
	"endian.h", "byteswap.h", "elf.h", "link.h",
	// platform SDKs
	"windows.h", "winsock2.h", "ws2tcpip.h", "windowsx.h", "shlobj.h",
	"shellapi.h", "tchar.h", "io.h", "direct.h", "process.h", "conio.h",
	"intrin.h", "immintrin.h", "emmintrin.h", "xmmintrin.h", "arm_neon.h",
	"objbase.h", "crtdbg.h",
}

// include prefixes of platform headers.
var knownHeaderPrefixes = []string{
	"sys/",
	"arpa/",
	"net/",
	"netinet/",
	"linux/",
	"asm/",
	"mach/",
	"mach-o/",
	"Foundation/",
	"CoreFoundation/",
	"Cocoa/",
	"UIKit/",
	"AppKit/",
}

// KnownHeaders recognizes system/third-party headers that are not
// expected to resolve to a file in the tree.
type KnownHeaders struct {
	names    map[string]bool
	prefixes []string
}

// NewKnownHeaders returns KnownHeaders for the standard headers plus
// extra names. An extra name ending with "/" is a prefix.
func NewKnownHeaders(extra ...string) *KnownHeaders {
	k := &KnownHeaders{
		names:    make(map[string]bool, len(knownHeaders)+len(extra)),
		prefixes: append([]string(nil), knownHeaderPrefixes...),
	}
	for _, name := range knownHeaders {
		k.names[name] = true
	}
	for _, name := range extra {
		if strings.HasSuffix(name, "/") {
			k.prefixes = append(k.prefixes, name)
			continue
		}
		k.names[name] = true
	}
	return k
}

// IsKnown reports whether the raw include text is a known header.
func (k *KnownHeaders) IsKnown(text string) bool {
	if k.names[text] {
		return true
	}
	for _, p := range k.prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
