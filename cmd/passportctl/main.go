// Command passportctl is a thin demonstration CLI over the passport
// packages: minting a fresh keychain bundle and, when the matching flags
// are given, a public messaging identity and a Mid login credential
// packet, then printing their names. It
// is not a supported entry point for production use — there is no
// on-disk persistence or network exchange here, only the in-process
// construction the library itself provides.
package main

import (
	"encoding/hex"
	"flag"
	"log"

	"github.com/gyoyo/MaidSafe-Passport/credentials"
	"github.com/gyoyo/MaidSafe-Passport/keychain"
)

func main() {
	var (
		username   = flag.String("username", "", "username for the demo login credentials")
		pin        = flag.String("pin", "", "numeric pin for the demo login credentials")
		publicName = flag.String("public-name", "", "chosen name for a demo public messaging identity")
	)
	flag.Parse()

	store := keychain.NewStore()
	if err := store.CreateBundle(); err != nil {
		log.Fatalf("passportctl: mint bundle: %v", err)
	}
	if err := store.Confirm(); err != nil {
		log.Fatalf("passportctl: confirm bundle: %v", err)
	}
	bundle := store.Confirmed()
	pmidName := bundle.Pmid.Name()
	log.Printf("pmid name: %s", hex.EncodeToString(pmidName[:]))

	if *publicName != "" {
		if err := store.CreateSelectable(*publicName); err != nil {
			log.Fatalf("passportctl: mint public identity: %v", err)
		}
		if err := store.ConfirmSelectable(*publicName); err != nil {
			log.Fatalf("passportctl: confirm public identity: %v", err)
		}
		sb, _ := store.ConfirmedSelectable(*publicName)
		mpidName := sb.Mpid.Name()
		log.Printf("mpid name: %s", hex.EncodeToString(mpidName[:]))
	}

	if *username != "" && *pin != "" {
		mid := credentials.NewMid(*username, *pin, "")
		if mid.Name() == nil {
			log.Fatalf("passportctl: mid construction failed for username/pin")
		}
		log.Printf("mid name: %s", hex.EncodeToString(mid.Name()))
	}
}
