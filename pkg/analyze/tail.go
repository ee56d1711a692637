package analyze

import (
	"io"
	"os"

	"github.com/nxadm/tail"

	"github.com/kaede/loglens/pkg/fileiter"
)

const oneMiB = 1024 * 1024

// OpenTailIterator follows filename as it grows. With whole=false it
// starts near the end so follow mode does not replay history.
func OpenTailIterator(filename string, whole bool) (fileiter.Iterator, error) {
	var seekInfo *tail.SeekInfo
	if whole {
		seekInfo = &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekStart,
		}
	} else {
		// Workaround: seeking from the end breaks when the file is
		// smaller than the lookback window, so check the size first.
		// It could race with rotation, but better than crashing later.
		fileInfo, err := os.Stat(filename)
		if err != nil {
			return nil, err
		}
		if fileInfo.Size() < oneMiB {
			seekInfo = &tail.SeekInfo{
				Offset: 0,
				Whence: io.SeekStart,
			}
		} else {
			seekInfo = &tail.SeekInfo{
				Offset: -oneMiB,
				Whence: io.SeekEnd,
			}
		}
	}
	t, err := tail.TailFile(filename, tail.Config{
		Follow:        true,
		ReOpen:        true,
		Location:      seekInfo,
		CompleteLines: true,
		MustExist:     true,
	})
	if err != nil {
		return nil, err
	}
	if !whole {
		// Eat a line, as the first one may be incomplete
		<-t.Lines
	}
	return fileiter.NewWithTail(t), nil
}
