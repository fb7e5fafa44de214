package app

import (
	"log"
	"mime"
)

func init() {
	ensureMimeType(".webp", "image/webp")
	ensureMimeType(".tiff", "image/tiff")
	ensureMimeType(".bmp", "image/bmp")
	ensureMimeType(".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ensureMimeType keeps the uploads file server from falling back to sniffing
// on hosts with a sparse mime database.
func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: failed to register MIME type for %s: %v", ext, err)
	}
}
