package chain

// getCheatCodeProviders obtains the cheat code contracts to be installed on a TestChain.
// Returns the list of cheat code contracts, or an error if one occurred during construction.
func getCheatCodeProviders(tracer *cheatCodeTracer) ([]*CheatCodeContract, error) {
	// Define our list of cheat code contracts
	var contracts []*CheatCodeContract

	// Obtain the standard cheat code contract
	stdCheatCodeContract, err := getStandardCheatCodeContract(tracer)
	if err != nil {
		return nil, err
	}
	contracts = append(contracts, stdCheatCodeContract)

	// Return the list of cheat code contracts
	return contracts, nil
}
