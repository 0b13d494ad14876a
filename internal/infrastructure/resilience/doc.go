/*
Package resilience provides a circuit breaker for calls to remote services.

# Overview

The portfolio API client wraps every request in a Breaker so a backend that
is down fails fast instead of making each terminal mount wait out the
request timeout.

# Usage

	breaker := resilience.New("portfolio-api", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		IsFailure: func(err error) bool {
			return !errors.Is(err, client.ErrNotFound)
		},
	})

	err := breaker.Do(func() error {
		return client.call(ctx)
	})

# States

- Closed: requests pass through; consecutive failures are counted
- Open: requests fail immediately with ErrCircuitOpen until the cooldown ends
- Half-Open: a single probe at a time; enough successes close the circuit,
  one failure reopens it

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[successes]-> Closed
	                                            |
	                                     [failure]
	                                            |
	                                            v
	                                          Open
*/
package resilience
