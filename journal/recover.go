package journal

import (
	"io"

	jerr "jfile/error"
	"jfile/utils"
)

// MarkReady flips the journal's flag to FlagReady and syncs it. This
// is the crash-visibility barrier of the commit protocol: once this
// call returns, the journal will be replayed by the next Recover, be
// it this same commit's or a future open's, even across a crash.
func MarkReady(jrnl Backend) error {
	if _, err := jrnl.Seek(0, io.SeekStart); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := putU8(jrnl, FlagReady); err != nil {
		return jerr.NewBackendError(err)
	}
	if err := jrnl.Sync(); err != nil {
		return jerr.NewBackendError(err)
	}
	return nil
}

// Recover inspects the journal's flag and, if it reads FlagReady,
// replays every block into main, syncs main, and flips the journal's
// flag to FlagCleared. It reports whether a replay happened. Any flag
// other than FlagReady (including a fresh, empty file) is left
// untouched. If a block fails to replay, Recover returns the error with
// the flag still FlagReady; blocks before the failing one may already
// have been written to main.
//
// The same routine backs both the implicit recovery an Open performs
// and the explicit drain step of a commit; the two differ only in
// which flag is expected to be on disk when they call in.
func Recover(jrnl, main Backend) (bool, error) {
	if _, err := jrnl.Seek(0, io.SeekStart); err != nil {
		return false, jerr.NewBackendError(err)
	}

	flag, err := getU8(jrnl)
	if err != nil {
		return false, jerr.NewBackendError(err)
	}
	if flag != int(FlagReady) {
		return false, nil
	}

	version, err := getI32(jrnl)
	if err != nil {
		return false, err
	}
	if version != Version {
		return false, jerr.NewVersionError(Version, version)
	}

	blockCount, err := getI64(jrnl)
	if err != nil {
		return false, err
	}

	for i := int64(0); i < blockCount; i++ {
		blockLength, err := getI64(jrnl)
		if err != nil {
			return false, err
		}
		targetPos, err := getI64(jrnl)
		if err != nil {
			return false, err
		}

		contentLength := blockLength - blockHeaderSize
		if contentLength == 0 {
			continue
		}

		if _, err := main.Seek(targetPos, io.SeekStart); err != nil {
			return false, jerr.NewBackendError(err)
		}
		if err := copyBlock(jrnl, main, contentLength); err != nil {
			return false, err
		}
	}

	if err := main.Sync(); err != nil {
		return false, jerr.NewBackendError(err)
	}

	if _, err := jrnl.Seek(0, io.SeekStart); err != nil {
		return false, jerr.NewBackendError(err)
	}
	if err := putU8(jrnl, FlagCleared); err != nil {
		return false, jerr.NewBackendError(err)
	}

	return true, nil
}

// copyBlock copies exactly n bytes from src to dst using a pooled
// scratch buffer, failing with CorruptJournalError if src runs out of
// bytes before n are copied.
func copyBlock(src, dst Backend, n int64) error {
	buf := utils.Get()
	defer utils.Put(buf)
	buf.Reset()

	if _, err := io.CopyN(buf, src, n); err != nil {
		return jerr.NewCorruptJournalError(err)
	}
	if _, err := dst.Write(buf.Bytes()); err != nil {
		return jerr.NewBackendError(err)
	}
	return nil
}
