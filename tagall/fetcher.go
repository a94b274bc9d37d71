package tagall

import (
	"context"
	"log/slog"
)

// PageLimit is the number of participants requested per directory call
const PageLimit = 100

// Page is one directory response. Raw counts every participant record the API returned,
// bots included, and is the only thing pagination looks at.
type Page struct {
	Raw     int
	Members []Member
}

// Directory lists participants of a group page by page
type Directory interface {
	Participants(ctx context.Context, groupID int64, offset, limit int) (Page, error)
}

type Fetcher struct {
	directory Directory
	log       *slog.Logger
}

func NewFetcher(directory Directory, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}

	return &Fetcher{
		directory: directory,
		log:       log,
	}
}

// FetchMembers walks the directory until an empty page and returns all human members
// in encounter order. Any directory error yields nil: callers must not read it as
// "the group has no members".
func (f *Fetcher) FetchMembers(ctx context.Context, groupID int64) []Member {
	var (
		members []Member
		seen    = make(map[int64]struct{})
		offset  = 0
	)

	for {
		page, err := f.directory.Participants(ctx, groupID, offset, PageLimit)
		if err != nil {
			f.log.Error("tagall: Failed to fetch participants", "error", err,
				"group_id", groupID, "offset", offset)
			return nil
		}

		// A page full of bots is still a page: only a raw empty page ends the scan
		if page.Raw == 0 {
			break
		}

		for _, m := range page.Members {
			if m.IsBot {
				continue
			}
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			members = append(members, m)
		}

		offset += PageLimit
	}

	f.log.Debug("tagall: Participants fetched", "group_id", groupID, "count", len(members))
	return members
}
