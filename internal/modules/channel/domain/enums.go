//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// PaginationMode selects which navigation element of a channel page carries
// the cursor of the next older page
// ENUM(prev_link,load_more)
type PaginationMode string

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string
