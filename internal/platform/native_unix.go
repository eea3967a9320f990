//go:build linux || freebsd || openbsd || netbsd || dragonfly

package platform

func newNative(opts Options) Platform {
	mimeFiles := []string{"/etc/mime.types"}
	if opts.MimeTypes != "" {
		mimeFiles = append(mimeFiles, opts.MimeTypes)
	}
	return newFreedesktop(
		dataDirs(),
		configDirs(),
		mimeFiles,
	)
}
