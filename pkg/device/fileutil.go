package device

import "os"

// readFileTolerant reads path, returning (nil, nil) if it does not exist
// rather than an error, since a missing known-serials file is the normal
// first-run state.
func readFileTolerant(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
