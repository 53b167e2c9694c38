package ports

//go:generate mockgen -source=audit_ports.go -destination=mocks/audit_mocks.go -package=mocks
//go:generate mockgen -source=ballot_ports.go -destination=mocks/ballot_mocks.go -package=mocks -exclude_interfaces=BallotService
//go:generate mockgen -source=vote_ports.go -destination=mocks/vote_mocks.go -package=mocks
//go:generate mockgen -source=election_ports.go -destination=mocks/election_mocks.go -package=mocks -exclude_interfaces=ElectionService
