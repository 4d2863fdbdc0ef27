// Package storage places downloaded files inside a chat folder.
//
// Album members share a group_<id> subfolder. Files are written through a
// temporary .part file and renamed into place, so the presence of a file at
// its final path always means the download completed.
//
//	manager, err := storage.NewManager(chatDir)
//	dir, err := manager.GroupDir(msg.GroupID)
//	n, err := manager.WriteFile(filepath.Join(dir, name), func(w io.Writer) error {
//	    return fetcher.FetchMedia(ctx, msg, w)
//	})
package storage
