// Package file provides a filesystem-backed index store.
//
// Each session owns a directory under the store root:
//
//	<root>/<session_id>/
//	    CURRENT                      name of the live generation
//	    gen-<nanos>-<id>/
//	        vector_index.bin         header + row-major float32 matrix
//	        chunk_metadata.json      chunks aligned with the matrix rows
//	        embedding_info.json      provenance
//
// A save writes a complete generation under a temporary name, renames it into
// place and then replaces CURRENT with a rename. Readers resolve CURRENT once
// and read a single generation, so they see either the old or the new index.
// The generation CURRENT pointed to before a save is kept until the next save
// so in-flight readers can finish.
package file
