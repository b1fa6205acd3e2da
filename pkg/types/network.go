package types

import "sort"

// NetworkID is an EVM chain id supported by the swap service
type NetworkID int

const (
	NetworkEthereum  NetworkID = 1
	NetworkOptimism  NetworkID = 10
	NetworkBinance   NetworkID = 56
	NetworkGnosis    NetworkID = 100
	NetworkUnichain  NetworkID = 130
	NetworkPolygon   NetworkID = 137
	NetworkSonic     NetworkID = 146
	NetworkFantom    NetworkID = 250
	NetworkZkSync    NetworkID = 324
	NetworkCoinbase  NetworkID = 8453
	NetworkArbitrum  NetworkID = 42161
	NetworkAvalanche NetworkID = 43114
	NetworkLinea     NetworkID = 59144
)

var networkNames = map[NetworkID]string{
	NetworkEthereum:  "Ethereum",
	NetworkOptimism:  "Optimism",
	NetworkBinance:   "BNB Chain",
	NetworkGnosis:    "Gnosis",
	NetworkUnichain:  "Unichain",
	NetworkPolygon:   "Polygon",
	NetworkSonic:     "Sonic",
	NetworkFantom:    "Fantom",
	NetworkZkSync:    "zkSync Era",
	NetworkCoinbase:  "Base",
	NetworkArbitrum:  "Arbitrum",
	NetworkAvalanche: "Avalanche",
	NetworkLinea:     "Linea",
}

// Supported reports whether id is in the supported network table
func (id NetworkID) Supported() bool {
	_, ok := networkNames[id]
	return ok
}

// Name returns the display name, or "" for unknown ids
func (id NetworkID) Name() string {
	return networkNames[id]
}

// Networks lists the supported networks ordered by chain id
func Networks() []NetworkID {
	ids := make([]NetworkID, 0, len(networkNames))
	for id := range networkNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
