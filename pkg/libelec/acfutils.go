//go:build libelec

package libelec

/*
#include <acfutils/crc64.h>
*/
import "C"

// SeedIdentity initializes the libacfutils CRC64 tables and seeds its
// identifier generator. Call it once before loading a network so that
// component identities are reproducible.
func SeedIdentity(seed uint64) {
	C.crc64_init()
	C.crc64_srand(C.uint64_t(seed))
}
