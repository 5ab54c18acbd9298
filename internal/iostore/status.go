package iostore

import (
	"fmt"
	"time"

	"github.com/aeswibon/dora/schema"
)

// PrintStoreStatus prints score store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Score Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Newest Entry: %s\n", time.Unix(status.NewestEntry, 0).UTC().Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", time.Unix(status.OldestEntry, 0).UTC().Format("2006-01-02 15:04:05"))
	}
}
