package libelec

//go:generate go run ../../cmd/elecbind --project ../.. generate
