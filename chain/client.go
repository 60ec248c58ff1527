package chain

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
)

// clientManager caches dialed RPC clients per endpoint so every
// component shares one connection.
type clientManager struct {
	clients map[string]*ethclient.Client
	mutex   sync.RWMutex
}

var globalClients = &clientManager{
	clients: make(map[string]*ethclient.Client),
}

// GetClient returns a shared client for the RPC endpoint, dialing on
// first use.
func GetClient(rpcURL string) (*ethclient.Client, error) {
	globalClients.mutex.RLock()
	client, ok := globalClients.clients[rpcURL]
	globalClients.mutex.RUnlock()
	if ok {
		return client, nil
	}

	globalClients.mutex.Lock()
	defer globalClients.mutex.Unlock()
	if client, ok := globalClients.clients[rpcURL]; ok {
		return client, nil
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	globalClients.clients[rpcURL] = client
	return client, nil
}
