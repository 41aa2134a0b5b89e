package manifest

import "fmt"

// ResolveDownloadURL finds the download URL for identity in doc.
//
// It walks result.links and returns the downloadUrl of the first link whose
// downloadType equals identity.String() exactly and whose downloadUrl is a
// string. Matching links without a usable URL are passed over.
// The function has no side effects.
func ResolveDownloadURL(doc *Document, identity fmt.Stringer) (string, bool) {
	root, ok := doc.root()
	if !ok {
		return "", false
	}

	result, ok := field(root, "result")
	if !ok {
		return "", false
	}

	links, ok := field(result, "links")
	if !ok {
		return "", false
	}

	items, ok := elements(links)
	if !ok {
		return "", false
	}

	want := identity.String()

	for _, item := range items {
		downloadType, isString := stringField(item, "downloadType")
		if !isString || downloadType != want {
			continue
		}

		if url, ok := stringField(item, "downloadUrl"); ok {
			return url, true
		}
	}

	return "", false
}
