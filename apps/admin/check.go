package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/core/coursecontent"
	"github.com/coursebox/backend/core/exam"
	"github.com/coursebox/backend/core/examresult"
	"github.com/coursebox/backend/core/examtopic"
	"github.com/coursebox/backend/core/lesson"
	"github.com/coursebox/backend/core/registereduser"
	"github.com/coursebox/backend/core/store"
)

// documents lists every stored document with the key holding its records.
var documents = []struct{ name, rootKey string }{
	{lesson.DocumentName, lesson.RootKey},
	{exam.DocumentName, exam.RootKey},
	{examresult.DocumentName, examresult.RootKey},
	{registereduser.DocumentName, registereduser.RootKey},
	{coursecontent.DocumentName, coursecontent.RootKey},
	{examtopic.DocumentName, examtopic.RootKey},
}

var errCorruptDocuments = errors.New("corrupt documents found")

// check loads every document and reports those that cannot be read.
func (cli *commandLine) check(ctx context.Context) error {
	var corrupt int
	for _, d := range documents {
		doc, err := cli.docs.Load(ctx, d.name)
		if err != nil {
			if !errors.Is(err, store.ErrCorruptDocument) {
				return errors.Wrapf(err, "loading %s", d.name)
			}
			corrupt++
			fmt.Fprintf(cli.out, "%s: CORRUPT: %v\n", d.name, err)
			continue
		}
		recs, err := doc.Records(d.rootKey)
		if err != nil {
			corrupt++
			fmt.Fprintf(cli.out, "%s: CORRUPT: %q: %v\n", d.name, d.rootKey, err)
			continue
		}
		fmt.Fprintf(cli.out, "%s: %d records\n", d.name, len(recs))
	}
	if corrupt > 0 {
		return errors.Wrapf(errCorruptDocuments, "%d of %d", corrupt, len(documents))
	}
	return nil
}
